package models

import "time"

// Membership - связь пользователь <-> организация.
type Membership struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	OrganizationID int       `json:"organization_id" db:"organization_id"`
	AddedAt        time.Time `json:"added_at" db:"added_at"`
	AddedBy        *int      `json:"added_by,omitempty" db:"added_by"`
}

const (
	MemberEntryUser       = "usuario"
	MemberEntryInvitation = "invitacion"
)

// MemberEntry - строка списка участников организации: либо пользователь, либо ожидающее приглашение.
type MemberEntry struct {
	Type         string     `json:"type"`
	UserID       *int       `json:"user_id,omitempty"`
	InvitationID *int       `json:"invitation_id,omitempty"`
	Email        string     `json:"email"`
	Name         *string    `json:"name,omitempty"`
	Image        *string    `json:"image,omitempty"`
	Role         *UserRole  `json:"role,omitempty"`
	AddedAt      time.Time  `json:"added_at"`
	AddedBy      *int       `json:"added_by,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type MemberStats struct {
	TotalUsers         int `json:"total_users"`
	ActiveUsers        int `json:"active_users"`
	PendingInvitations int `json:"pending_invitations"`
}

type UserOrganization struct {
	Organization
	JoinedAt time.Time `json:"joined_at"`
}
