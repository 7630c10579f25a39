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
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategorySlugConflict = errors.New("category slug conflict")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetBySlug(ctx context.Context, organizationID int, slug string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
	ListByOrganization(ctx context.Context, organizationID int, filter models.CategoryFilter) ([]models.Category, error)
	SlugExists(ctx context.Context, organizationID int, slug string, excludeID int) (bool, error)
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

const categoryColumns = `id, organization_id, name, slug, modality, description, min_age, max_age, level, is_active, created_at`

func (r *postgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (organization_id, name, slug, modality, description, min_age, max_age, level, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		category.OrganizationID,
		category.Name,
		category.Slug,
		category.Modality,
		category.Description,
		category.MinAge,
		category.MaxAge,
		category.Level,
		category.IsActive,
	).Scan(&category.ID, &category.CreatedAt)

	if err != nil {
		return mapCategoryError(err)
	}
	return nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCategoryRepository) GetBySlug(ctx context.Context, organizationID int, slug string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE organization_id = $1 AND slug = $2`
	return scanCategory(r.db.QueryRowContext(ctx, query, organizationID, slug))
}

func (r *postgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories SET
			name = $1,
			slug = $2,
			modality = $3,
			description = $4,
			min_age = $5,
			max_age = $6,
			level = $7,
			is_active = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		category.Name,
		category.Slug,
		category.Modality,
		category.Description,
		category.MinAge,
		category.MaxAge,
		category.Level,
		category.IsActive,
		category.ID,
	)
	if err != nil {
		return mapCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) ListByOrganization(ctx context.Context, organizationID int, filter models.CategoryFilter) ([]models.Category, error) {
	args := []interface{}{organizationID}
	conditions := []string{"organization_id = $1"}

	if filter.Modality != nil {
		args = append(args, string(*filter.Modality))
		conditions = append(conditions, fmt.Sprintf("modality = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Level != nil {
		args = append(args, string(*filter.Level))
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR slug LIKE $%d)", n, n))
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY is_active DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, *category)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postgresCategoryRepository) SlugExists(ctx context.Context, organizationID int, slug string, excludeID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE organization_id = $1 AND slug = $2 AND id <> $3)`
	err := r.db.QueryRowContext(ctx, query, organizationID, slug, excludeID).Scan(&exists)
	return exists, err
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	var level sql.NullString
	err := row.Scan(
		&category.ID,
		&category.OrganizationID,
		&category.Name,
		&category.Slug,
		&category.Modality,
		&category.Description,
		&category.MinAge,
		&category.MaxAge,
		&level,
		&category.IsActive,
		&category.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if level.Valid {
		l := models.SkillLevel(level.String)
		category.Level = &l
	}
	return &category, nil
}

func mapCategoryError(err error) error {
	code, constraint, ok := pqConstraint(err)
	if !ok {
		return err
	}
	switch {
	case code == pqUniqueViolation && constraint == "categories_organization_id_slug_key":
		return ErrCategorySlugConflict
	case code == pqForeignKeyViolation && constraint == "categories_organization_id_fkey":
		return ErrOrganizationNotFound
	}
	return err
}
