package models

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationAccepted || s == InvitationExpired || s == InvitationCancelled
}

// Invitation - приглашение администрировать организацию. Записи никогда не удаляются.
type Invitation struct {
	ID             int              `json:"id" db:"id"`
	Email          string           `json:"email" db:"email"`
	Name           *string          `json:"name,omitempty" db:"name"`
	OrganizationID int              `json:"organization_id" db:"organization_id"`
	Token          string           `json:"-" db:"token"`
	ExpiresAt      time.Time        `json:"expires_at" db:"expires_at"`
	InvitedBy      int              `json:"invited_by" db:"invited_by"`
	Status         InvitationStatus `json:"status" db:"status"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty" db:"accepted_at"`
	UserID         *int             `json:"user_id,omitempty" db:"user_id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

func (i *Invitation) IsExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationView - приглашение, обогащенное данными организации и пригласившего.
type InvitationView struct {
	Invitation
	Token            string  `json:"token,omitempty"`
	OrganizationName string  `json:"organization_name,omitempty"`
	OrganizationSlug string  `json:"organization_slug,omitempty"`
	InvitedByName    string  `json:"invited_by_name"`
	UserName         *string `json:"user_name,omitempty"`
}

type InvitationVerification struct {
	Valid      bool            `json:"valid"`
	Reason     string          `json:"reason,omitempty"`
	Invitation *InvitationView `json:"invitation,omitempty"`
}

type AcceptInvitationResult struct {
	OrganizationID   int    `json:"organization_id"`
	OrganizationSlug string `json:"organization_slug"`
}
