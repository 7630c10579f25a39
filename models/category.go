package models

import "time"

type Modality string

const (
	ModalitySingles         Modality = "singles"
	ModalityDoblesMasculino Modality = "dobles_masculino"
	ModalityDoblesFemenino  Modality = "dobles_femenino"
	ModalityDoblesMixto     Modality = "dobles_mixto"
)

func (m Modality) IsValid() bool {
	switch m {
	case ModalitySingles, ModalityDoblesMasculino, ModalityDoblesFemenino, ModalityDoblesMixto:
		return true
	}
	return false
}

type SkillLevel string

const (
	LevelPrincipiante SkillLevel = "principiante"
	LevelIntermedio   SkillLevel = "intermedio"
	LevelAvanzado     SkillLevel = "avanzado"
	LevelPro          SkillLevel = "pro"
)

func (l SkillLevel) IsValid() bool {
	switch l {
	case LevelPrincipiante, LevelIntermedio, LevelAvanzado, LevelPro:
		return true
	}
	return false
}

type Category struct {
	ID             int         `json:"id" db:"id"`
	OrganizationID int         `json:"organization_id" db:"organization_id"`
	Name           string      `json:"name" db:"name"`
	Slug           string      `json:"slug" db:"slug"`
	Modality       Modality    `json:"modality" db:"modality"`
	Description    *string     `json:"description,omitempty" db:"description"`
	MinAge         *int        `json:"min_age,omitempty" db:"min_age"`
	MaxAge         *int        `json:"max_age,omitempty" db:"max_age"`
	Level          *SkillLevel `json:"level,omitempty" db:"level"`
	IsActive       bool        `json:"is_active" db:"is_active"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

type CategoryFilter struct {
	Modality *Modality
	IsActive *bool
	Level    *SkillLevel
	Search   string
}

// CategoryTemplate - системный шаблон категории (константы, не хранятся в БД).
type CategoryTemplate struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Modality Modality `json:"modality"`
	MinAge   *int     `json:"min_age,omitempty"`
	MaxAge   *int     `json:"max_age,omitempty"`
}

type CategoryStats struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	Inactive   int              `json:"inactive"`
	ByModality map[Modality]int `json:"by_modality"`
}

type CategoryUsage struct {
	IsUsed          bool `json:"is_used"`
	TournamentCount int  `json:"tournament_count"`
}
