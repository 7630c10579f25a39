package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/matchsquad/models"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
)

// MemberUser - пользователь организации вместе с данными связи.
type MemberUser struct {
	User       models.User
	Membership models.Membership
}

// MembershipRepository управляет таблицей user_organizations.
type MembershipRepository interface {
	// Create идемпотентен: существующая связь не считается ошибкой.
	Create(ctx context.Context, exec SQLExecutor, membership *models.Membership) error
	Exists(ctx context.Context, userID, organizationID int) (bool, error)
	Delete(ctx context.Context, userID, organizationID int) error
	ListUsersByOrganization(ctx context.Context, organizationID int) ([]MemberUser, error)
	ListOrganizationsByUser(ctx context.Context, userID int) ([]models.UserOrganization, error)
	CountByOrganization(ctx context.Context, organizationID int) (int, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, membership *models.Membership) error {
	query := `
		INSERT INTO user_organizations (user_id, organization_id, added_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, organization_id) DO NOTHING`

	_, err := pickExecutor(r.db, exec).ExecContext(ctx, query,
		membership.UserID,
		membership.OrganizationID,
		membership.AddedBy,
	)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqForeignKeyViolation {
			switch constraint {
			case "user_organizations_user_id_fkey":
				return ErrUserNotFound
			case "user_organizations_organization_id_fkey":
				return ErrOrganizationNotFound
			}
		}
		return err
	}
	return nil
}

func (r *postgresMembershipRepository) Exists(ctx context.Context, userID, organizationID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_organizations WHERE user_id = $1 AND organization_id = $2)`
	err := r.db.QueryRowContext(ctx, query, userID, organizationID).Scan(&exists)
	return exists, err
}

func (r *postgresMembershipRepository) Delete(ctx context.Context, userID, organizationID int) error {
	query := `DELETE FROM user_organizations WHERE user_id = $1 AND organization_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, organizationID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) ListUsersByOrganization(ctx context.Context, organizationID int) ([]MemberUser, error) {
	query := `
		SELECT u.id, u.email, u.name, u.image, u.role, u.email_verified_at, u.created_at,
		       uo.id, uo.user_id, uo.organization_id, uo.added_at, uo.added_by
		FROM user_organizations uo
		JOIN users u ON u.id = uo.user_id
		WHERE uo.organization_id = $1
		ORDER BY uo.added_at DESC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]MemberUser, 0)
	for rows.Next() {
		var m MemberUser
		var role sql.NullString
		if err := rows.Scan(
			&m.User.ID, &m.User.Email, &m.User.Name, &m.User.Image, &role, &m.User.EmailVerifiedAt, &m.User.CreatedAt,
			&m.Membership.ID, &m.Membership.UserID, &m.Membership.OrganizationID, &m.Membership.AddedAt, &m.Membership.AddedBy,
		); err != nil {
			return nil, err
		}
		if role.Valid {
			m.User.Role = models.UserRole(role.String)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresMembershipRepository) ListOrganizationsByUser(ctx context.Context, userID int) ([]models.UserOrganization, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.email, o.description, o.phone, o.address, o.hours,
		       o.social_links, o.active, o.logo_key, o.created_at, uo.added_at
		FROM user_organizations uo
		JOIN organizations o ON o.id = uo.organization_id
		WHERE uo.user_id = $1
		ORDER BY uo.added_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]models.UserOrganization, 0)
	for rows.Next() {
		var uo models.UserOrganization
		var address nullAddress
		var links nullSocialLinks
		if err := rows.Scan(
			&uo.ID, &uo.Name, &uo.Slug, &uo.Email, &uo.Description, &uo.Phone, &address, &uo.Hours,
			&links, &uo.Active, &uo.LogoKey, &uo.CreatedAt, &uo.JoinedAt,
		); err != nil {
			return nil, err
		}
		uo.Address = address.value
		uo.SocialLinks = links.value
		orgs = append(orgs, uo)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *postgresMembershipRepository) CountByOrganization(ctx context.Context, organizationID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_organizations WHERE organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, organizationID).Scan(&count)
	return count, err
}
