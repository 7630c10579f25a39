package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/matchsquad/models"
)

var (
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationSlugConflict = errors.New("organization slug conflict")
	ErrOrganizationInUse        = errors.New("organization is referenced by other records")
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id int) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	SetActive(ctx context.Context, id int, active bool) error
	UpdateLogo(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error)
	CountActive(ctx context.Context) (int, error)
	// SlugExists проверяет занятость slug, исключая организацию excludeID (0 - без исключения).
	SlugExists(ctx context.Context, slug string, excludeID int) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int) (bool, error)
	CountDependencies(ctx context.Context, id int) (categories int, invitations int, err error)
}

type postgresOrganizationRepository struct {
	db *sql.DB
}

func NewPostgresOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &postgresOrganizationRepository{db: db}
}

const organizationColumns = `id, name, slug, email, description, phone, address, hours, social_links, active, logo_key, created_at`

func (r *postgresOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, slug, email, description, phone, address, hours, social_links, active, logo_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		org.Name,
		org.Slug,
		org.Email,
		org.Description,
		org.Phone,
		addressValue(org.Address),
		org.Hours,
		socialLinksValue(org.SocialLinks),
		org.Active,
		org.LogoKey,
	).Scan(&org.ID, &org.CreatedAt)

	if err != nil {
		return mapOrganizationError(err)
	}
	return nil
}

func (r *postgresOrganizationRepository) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	return scanOrganization(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE slug = $1`
	return scanOrganization(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations SET
			name = $1,
			slug = $2,
			email = $3,
			description = $4,
			phone = $5,
			address = $6,
			hours = $7,
			social_links = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		org.Name,
		org.Slug,
		org.Email,
		org.Description,
		org.Phone,
		addressValue(org.Address),
		org.Hours,
		socialLinksValue(org.SocialLinks),
		org.ID,
	)
	if err != nil {
		return mapOrganizationError(err)
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE organizations SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) UpdateLogo(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE organizations SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return mapOrganizationError(err)
	}
	return checkAffectedRows(result, ErrOrganizationNotFound)
}

func (r *postgresOrganizationRepository) List(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(slug) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n))
	}

	query := `SELECT ` + organizationColumns + ` FROM organizations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]models.Organization, 0)
	for rows.Next() {
		org, scanErr := scanOrganization(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		orgs = append(orgs, *org)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *postgresOrganizationRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations WHERE active = TRUE`).Scan(&count)
	return count, err
}

func (r *postgresOrganizationRepository) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1 AND id <> $2)`
	err := r.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists)
	return exists, err
}

func (r *postgresOrganizationRepository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE LOWER(email) = LOWER($1) AND id <> $2)`
	err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *postgresOrganizationRepository) CountDependencies(ctx context.Context, id int) (int, int, error) {
	var categories, invitations int
	query := `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE organization_id = $1),
			(SELECT COUNT(*) FROM invitations WHERE organization_id = $1)`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&categories, &invitations)
	return categories, invitations, err
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var org models.Organization
	var address nullAddress
	var links nullSocialLinks
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.Email,
		&org.Description,
		&org.Phone,
		&address,
		&org.Hours,
		&links,
		&org.Active,
		&org.LogoKey,
		&org.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	org.Address = address.value
	org.SocialLinks = links.value
	return &org, nil
}

func mapOrganizationError(err error) error {
	code, constraint, ok := pqConstraint(err)
	if !ok {
		return err
	}
	switch {
	case code == pqUniqueViolation && constraint == "organizations_slug_key":
		return ErrOrganizationSlugConflict
	case code == pqForeignKeyViolation:
		return ErrOrganizationInUse
	}
	return err
}

// JSONB-колонки могут быть NULL, поэтому сканируем через обертки.
type nullAddress struct{ value *models.Address }

func (n *nullAddress) Scan(src interface{}) error {
	if src == nil {
		n.value = nil
		return nil
	}
	var a models.Address
	if err := a.Scan(src); err != nil {
		return err
	}
	n.value = &a
	return nil
}

type nullSocialLinks struct{ value *models.SocialLinks }

func (n *nullSocialLinks) Scan(src interface{}) error {
	if src == nil {
		n.value = nil
		return nil
	}
	var s models.SocialLinks
	if err := s.Scan(src); err != nil {
		return err
	}
	n.value = &s
	return nil
}

func addressValue(a *models.Address) interface{} {
	if a == nil {
		return nil
	}
	return *a
}

func socialLinksValue(s *models.SocialLinks) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
