package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Value/Scan хранят адрес в колонке JSONB.
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src interface{}) error {
	return scanJSON(src, a)
}

type SocialLinks struct {
	Facebook  *string `json:"facebook,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Twitter   *string `json:"twitter,omitempty"`
}

func (s SocialLinks) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SocialLinks) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported type for JSONB column")
	}
}

// Organization - организатор (клуб, ассоциация).
type Organization struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Slug        string       `json:"slug" db:"slug"`
	Email       string       `json:"email" db:"email"`
	Description *string      `json:"description,omitempty" db:"description"`
	Phone       *string      `json:"phone,omitempty" db:"phone"`
	Address     *Address     `json:"address,omitempty" db:"address"`
	Hours       *string      `json:"hours,omitempty" db:"hours"`
	SocialLinks *SocialLinks `json:"social_links,omitempty" db:"social_links"`
	Active      bool         `json:"active" db:"active"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

type OrganizationFilter struct {
	Active *bool
	Search string
}

type SlugAvailability struct {
	Available bool `json:"available"`
}
