package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/models"
)

var categoryRowColumns = []string{"id", "organization_id", "name", "slug", "modality", "description", "min_age", "max_age", "level", "is_active", "created_at"}

func TestCategoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	level := models.LevelIntermedio
	minAge := 18
	cat := &models.Category{OrganizationID: 3, Name: "Mixto", Slug: "mixto", Modality: models.ModalityDoblesMixto, MinAge: &minAge, Level: &level, IsActive: true}
	created := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (organization_id, name, slug, modality, description, min_age, max_age, level, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`)).
		WithArgs(3, "Mixto", "mixto", "dobles_mixto", nil, 18, nil, "intermedio", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(21, created))

	require.NoError(t, NewPostgresCategoryRepository(db).Create(context.Background(), cat))
	assert.Equal(t, 21, cat.ID)
}

func TestCategorySlugConflict(t *testing.T) {
	conflict := &pq.Error{Code: pqUniqueViolation, Constraint: "categories_organization_id_slug_key"}
	cat := &models.Category{ID: 21, OrganizationID: 3, Name: "Mixto", Slug: "mixto", Modality: models.ModalityDoblesMixto}

	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO categories`).WillReturnError(conflict)
	mock.ExpectExec(`UPDATE categories SET`).WillReturnError(conflict)
	mock.ExpectQuery(`INSERT INTO categories`).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "categories_organization_id_fkey"})

	repo := NewPostgresCategoryRepository(db)
	assert.ErrorIs(t, repo.Create(context.Background(), cat), ErrCategorySlugConflict)
	assert.ErrorIs(t, repo.Update(context.Background(), cat), ErrCategorySlugConflict)
	assert.ErrorIs(t, repo.Create(context.Background(), cat), ErrOrganizationNotFound)
}

func TestCategoryUpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE categories SET .* WHERE id = \$9`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresCategoryRepository(db).Update(context.Background(), &models.Category{ID: 99, Modality: models.ModalitySingles})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryGetBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE organization_id = $1 AND slug = $2`)).
		WithArgs(3, "mixto").
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).
			AddRow(21, 3, "Mixto", "mixto", "dobles_mixto", nil, 18, nil, nil, true, created))

	cat, err := NewPostgresCategoryRepository(db).GetBySlug(context.Background(), 3, "mixto")
	require.NoError(t, err)
	assert.Equal(t, models.ModalityDoblesMixto, cat.Modality)
	require.NotNil(t, cat.MinAge)
	assert.Equal(t, 18, *cat.MinAge)
	assert.Nil(t, cat.MaxAge)
	assert.Nil(t, cat.Level)
}

func TestCategoryListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	modality := models.ModalitySingles
	active := true
	level := models.LevelPro

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE organization_id = $1 AND modality = $2 AND is_active = $3 AND level = $4 AND (LOWER(name) LIKE $5 OR slug LIKE $5) ORDER BY is_active DESC, name ASC`)).
		WithArgs(3, "singles", true, "pro", "%open%").
		WillReturnRows(sqlmock.NewRows(categoryRowColumns).
			AddRow(1, 3, "Open", "open", "singles", "Abierta", nil, nil, "pro", true, time.Now()))

	list, err := NewPostgresCategoryRepository(db).ListByOrganization(context.Background(), 3, models.CategoryFilter{
		Modality: &modality,
		IsActive: &active,
		Level:    &level,
		Search:   " Open ",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Level)
	assert.Equal(t, models.LevelPro, *list[0].Level)
	require.NotNil(t, list[0].Description)
	assert.Equal(t, "Abierta", *list[0].Description)
}

func TestCategorySlugExists(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM categories WHERE organization_id = $1 AND slug = $2 AND id <> $3)`)).
		WithArgs(3, "mixto-discontinuada", 21).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewPostgresCategoryRepository(db).SlugExists(context.Background(), 3, "mixto-discontinuada", 21)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCategoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).WithArgs(21).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).WithArgs(22).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresCategoryRepository(db)
	assert.NoError(t, repo.Delete(context.Background(), 21))
	assert.ErrorIs(t, repo.Delete(context.Background(), 22), ErrCategoryNotFound)
}
