package models

import "time"

type UserRole string

const (
	RoleSuperadmin  UserRole = "superadmin"
	RoleOrganizador UserRole = "organizador"
	RoleJugador     UserRole = "jugador"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleOrganizador, RoleJugador:
		return true
	}
	return false
}

// User - пользователь платформы. Role может быть пустой строкой, если роль еще не назначена.
type User struct {
	ID              int        `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Name            *string    `json:"name,omitempty" db:"name"`
	Image           *string    `json:"image,omitempty" db:"image"`
	Role            UserRole   `json:"role,omitempty" db:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty" db:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// EffectiveRole возвращает роль пользователя; пустая роль читается как jugador.
func (u *User) EffectiveRole() UserRole {
	if u == nil || u.Role == "" {
		return RoleJugador
	}
	return u.Role
}

func (u *User) HasName() bool {
	return u != nil && u.Name != nil && *u.Name != ""
}

// DisplayName возвращает имя, email или fallback.
func (u *User) DisplayName(fallback string) string {
	if u == nil {
		return fallback
	}
	if u.HasName() {
		return *u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return fallback
}

type UserFilter struct {
	Role   *UserRole
	Search string
}

type UserStats struct {
	Total         int `json:"total"`
	Superadmins   int `json:"superadmins"`
	Organizadores int `json:"organizadores"`
	Jugadores     int `json:"jugadores"`
}

// CurrentUser - ответ для /users/me.
type CurrentUser struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	Name        *string  `json:"name,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Role        UserRole `json:"role"`
	LandingPath string   `json:"landing_path"`
}
