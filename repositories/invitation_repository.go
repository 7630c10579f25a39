package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/matchsquad/models"
)

var (
	ErrInvitationNotFound         = errors.New("invitation not found")
	ErrInvitationTokenConflict    = errors.New("invitation token conflict")
	ErrInvitationPendingDuplicate = errors.New("pending invitation already exists for email and organization")
	// ErrInvitationStatusConflict - условное обновление не затронуло строк: статус уже не pending.
	ErrInvitationStatusConflict = errors.New("invitation is no longer pending")
)

// InvitationRepository хранит приглашения. Строки никогда не удаляются, меняется только статус.
type InvitationRepository interface {
	// Create заполняет ID и CreatedAt. ExpiresAt и Token устанавливает сервис.
	Create(ctx context.Context, invitation *models.Invitation) error

	GetByID(ctx context.Context, id int) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)

	// GetByTokenForUpdate блокирует строку до конца транзакции exec.
	GetByTokenForUpdate(ctx context.Context, exec SQLExecutor, token string) (*models.Invitation, error)

	FindPending(ctx context.Context, email string, organizationID int) (*models.Invitation, error)
	ListByOrganization(ctx context.Context, organizationID int) ([]models.Invitation, error)
	ListPendingByOrganization(ctx context.Context, organizationID int) ([]models.Invitation, error)
	CountPendingByOrganization(ctx context.Context, organizationID int) (int, error)

	// MarkAccepted, MarkExpired и MarkCancelled меняют статус только из pending.
	// Если строка уже не pending, возвращается ErrInvitationStatusConflict.
	MarkAccepted(ctx context.Context, exec SQLExecutor, id int, userID int, at time.Time) error
	MarkExpired(ctx context.Context, exec SQLExecutor, id int) error
	MarkCancelled(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

const invitationColumns = `id, email, name, organization_id, token, expires_at, invited_by, status, accepted_at, user_id, created_at`

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	query := `
		INSERT INTO invitations (email, name, organization_id, token, expires_at, invited_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invitation.Email,
		invitation.Name,
		invitation.OrganizationID,
		invitation.Token,
		invitation.ExpiresAt,
		invitation.InvitedBy,
		invitation.Status,
	).Scan(&invitation.ID, &invitation.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch code {
			case pqUniqueViolation:
				switch constraint {
				case "invitations_token_key":
					return ErrInvitationTokenConflict
				case "invitations_pending_email_org_key":
					return ErrInvitationPendingDuplicate
				}
			case pqForeignKeyViolation:
				switch constraint {
				case "invitations_organization_id_fkey":
					return ErrOrganizationNotFound
				case "invitations_invited_by_fkey":
					return ErrUserNotFound
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.db.QueryRowContext(ctx, query, token))
}

func (r *postgresInvitationRepository) GetByTokenForUpdate(ctx context.Context, exec SQLExecutor, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1 FOR UPDATE`
	return scanInvitation(pickExecutor(r.db, exec).QueryRowContext(ctx, query, token))
}

func (r *postgresInvitationRepository) FindPending(ctx context.Context, email string, organizationID int) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = $1 AND organization_id = $2 AND status = 'pending'`
	return scanInvitation(r.db.QueryRowContext(ctx, query, email, organizationID))
}

func (r *postgresInvitationRepository) ListByOrganization(ctx context.Context, organizationID int) ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE organization_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, organizationID)
}

func (r *postgresInvitationRepository) ListPendingByOrganization(ctx context.Context, organizationID int) ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE organization_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`
	return r.list(ctx, query, organizationID)
}

func (r *postgresInvitationRepository) CountPendingByOrganization(ctx context.Context, organizationID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM invitations WHERE organization_id = $1 AND status = 'pending'`
	err := r.db.QueryRowContext(ctx, query, organizationID).Scan(&count)
	return count, err
}

func (r *postgresInvitationRepository) MarkAccepted(ctx context.Context, exec SQLExecutor, id int, userID int, at time.Time) error {
	query := `
		UPDATE invitations
		SET status = 'accepted', accepted_at = $2, user_id = $3
		WHERE id = $1 AND status = 'pending'`
	result, err := pickExecutor(r.db, exec).ExecContext(ctx, query, id, at, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationStatusConflict)
}

func (r *postgresInvitationRepository) MarkExpired(ctx context.Context, exec SQLExecutor, id int) error {
	return r.transition(ctx, exec, id, models.InvitationExpired)
}

func (r *postgresInvitationRepository) MarkCancelled(ctx context.Context, exec SQLExecutor, id int) error {
	return r.transition(ctx, exec, id, models.InvitationCancelled)
}

func (r *postgresInvitationRepository) transition(ctx context.Context, exec SQLExecutor, id int, to models.InvitationStatus) error {
	query := `UPDATE invitations SET status = $2 WHERE id = $1 AND status = 'pending'`
	result, err := pickExecutor(r.db, exec).ExecContext(ctx, query, id, to)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInvitationStatusConflict)
}

func (r *postgresInvitationRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]models.Invitation, 0)
	for rows.Next() {
		invitation, scanErr := scanInvitation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invitations = append(invitations, *invitation)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var invitation models.Invitation
	err := row.Scan(
		&invitation.ID,
		&invitation.Email,
		&invitation.Name,
		&invitation.OrganizationID,
		&invitation.Token,
		&invitation.ExpiresAt,
		&invitation.InvitedBy,
		&invitation.Status,
		&invitation.AcceptedAt,
		&invitation.UserID,
		&invitation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}
