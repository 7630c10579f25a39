package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/utils"
)

const discontinuedSlugSuffix = "-discontinuada"

var discontinuedSlugPattern = regexp.MustCompile(`-discontinuada(?:-\d+)?$`)

func intPtr(v int) *int { return &v }

// Системные шаблоны категорий (не хранятся в БД).
var systemTemplates = []models.CategoryTemplate{
	{Name: "Masculino Singles", Slug: "masculino-singles", Modality: models.ModalitySingles},
	{Name: "Femenino Singles", Slug: "femenino-singles", Modality: models.ModalitySingles},
	{Name: "Dobles Masculino", Slug: "dobles-masculino", Modality: models.ModalityDoblesMasculino},
	{Name: "Dobles Femenino", Slug: "dobles-femenino", Modality: models.ModalityDoblesFemenino},
	{Name: "Dobles Mixto", Slug: "dobles-mixto", Modality: models.ModalityDoblesMixto},
	{Name: "Sub-18 Masculino", Slug: "sub-18-masculino", Modality: models.ModalitySingles, MaxAge: intPtr(18)},
	{Name: "Sub-18 Femenino", Slug: "sub-18-femenino", Modality: models.ModalitySingles, MaxAge: intPtr(18)},
	{Name: "Veteranos +40", Slug: "veteranos-40", Modality: models.ModalitySingles, MinAge: intPtr(40)},
	{Name: "Veteranos +50", Slug: "veteranos-50", Modality: models.ModalitySingles, MinAge: intPtr(50)},
}

// SystemTemplates возвращает копию списка шаблонов.
func SystemTemplates() []models.CategoryTemplate {
	out := make([]models.CategoryTemplate, len(systemTemplates))
	copy(out, systemTemplates)
	return out
}

func findTemplate(slug string) (models.CategoryTemplate, bool) {
	for _, t := range systemTemplates {
		if t.Slug == slug {
			return t, true
		}
	}
	return models.CategoryTemplate{}, false
}

type CategoryInput struct {
	Name        string             `json:"name" validate:"required,max=100"`
	Slug        string             `json:"slug" validate:"slug"`
	Modality    models.Modality    `json:"modality" validate:"modality"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=1000"`
	MinAge      *int               `json:"min_age,omitempty" validate:"omitempty,min=0"`
	MaxAge      *int               `json:"max_age,omitempty" validate:"omitempty,min=0"`
	Level       *models.SkillLevel `json:"level,omitempty" validate:"omitempty,skill_level"`
}

func categoryInputOf(c *models.Category) CategoryInput {
	return CategoryInput{
		Name:        c.Name,
		Slug:        c.Slug,
		Modality:    c.Modality,
		Description: c.Description,
		MinAge:      c.MinAge,
		MaxAge:      c.MaxAge,
		Level:       c.Level,
	}
}

// UpdateCategoryInput - частичное обновление: nil означает "не менять".
// IsActive=false работает как DeactivateCategory, IsActive=true возвращает исходный slug.
type UpdateCategoryInput struct {
	Name        *string            `json:"name,omitempty"`
	Slug        *string            `json:"slug,omitempty"`
	Modality    *models.Modality   `json:"modality,omitempty"`
	Description *string            `json:"description,omitempty"`
	MinAge      *int               `json:"min_age,omitempty"`
	MaxAge      *int               `json:"max_age,omitempty"`
	Level       *models.SkillLevel `json:"level,omitempty"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, currentUserID, organizationID int, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, currentUserID, categoryID int, input UpdateCategoryInput) (*models.Category, error)
	DeactivateCategory(ctx context.Context, currentUserID, categoryID int) (*models.Category, error)
	DeleteCategory(ctx context.Context, currentUserID, categoryID int) error
	// CopyTemplate создает категорию из системного шаблона; при занятом slug добавляет -1, -2, ...
	CopyTemplate(ctx context.Context, currentUserID, organizationID int, templateSlug string) (*models.Category, error)
	CategoryStats(ctx context.Context, currentUserID, organizationID int) (*models.CategoryStats, error)
	CountActiveCategories(ctx context.Context, currentUserID, organizationID int) (int, error)

	ListCategories(ctx context.Context, currentUserID, organizationID int, filter models.CategoryFilter) ([]models.Category, error)
	GetCategory(ctx context.Context, currentUserID, categoryID int) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, currentUserID, organizationID int, slug string) (*models.Category, error)
	CheckSlugAvailability(ctx context.Context, currentUserID, organizationID int, slug string, excludeID int) (*models.SlugAvailability, error)
	CategoryUsage(ctx context.Context, currentUserID, categoryID int) (*models.CategoryUsage, error)
	Templates() []models.CategoryTemplate
}

type categoryService struct {
	categoryRepo     repositories.CategoryRepository
	organizationRepo repositories.OrganizationRepository
	guard            AccessGuard
	events           EventPublisher
	logger           *slog.Logger
}

func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	organizationRepo repositories.OrganizationRepository,
	guard AccessGuard,
	events EventPublisher,
	logger *slog.Logger,
) CategoryService {
	if events == nil {
		events = noopPublisher{}
	}
	return &categoryService{
		categoryRepo:     categoryRepo,
		organizationRepo: organizationRepo,
		guard:            guard,
		events:           events,
		logger:           loggerOrDefault(logger),
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, currentUserID, organizationID int, input CategoryInput) (*models.Category, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Slug = utils.NormalizeSlug(input.Slug)
	input.Description = utils.TrimToNil(input.Description)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{
		OrganizationID: organizationID,
		Name:           input.Name,
		Slug:           input.Slug,
		Modality:       input.Modality,
		Description:    input.Description,
		MinAge:         input.MinAge,
		MaxAge:         input.MaxAge,
		Level:          input.Level,
		IsActive:       true,
	}
	if err := s.ensureSlugFree(ctx, organizationID, category.Slug, 0); err != nil {
		return nil, err
	}

	if err := s.create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, currentUserID, categoryID int, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.authorizedCategory(ctx, currentUserID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	slugChanged := false
	if input.Slug != nil {
		slug := utils.NormalizeSlug(*input.Slug)
		slugChanged = slug != category.Slug
		category.Slug = slug
	}
	if input.Modality != nil {
		category.Modality = *input.Modality
	}
	if input.Description != nil {
		category.Description = utils.TrimToNil(input.Description)
	}
	// возрастной диапазон проверяется по объединенным значениям
	if input.MinAge != nil {
		category.MinAge = input.MinAge
	}
	if input.MaxAge != nil {
		category.MaxAge = input.MaxAge
	}
	if input.Level != nil {
		category.Level = input.Level
	}

	if err := validateInput(categoryInputOf(category)); err != nil {
		return nil, err
	}

	if input.IsActive != nil && *input.IsActive != category.IsActive {
		category.IsActive = *input.IsActive
		if !category.IsActive {
			slug, err := s.discontinuedSlug(ctx, category)
			if err != nil {
				return nil, err
			}
			category.Slug = slug
			slugChanged = false
		} else if input.Slug == nil {
			category.Slug = discontinuedSlugPattern.ReplaceAllString(category.Slug, "")
			slugChanged = true
		}
	}
	if slugChanged {
		if err := s.ensureSlugFree(ctx, category.OrganizationID, category.Slug, category.ID); err != nil {
			return nil, err
		}
	}

	if err := s.update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeactivateCategory(ctx context.Context, currentUserID, categoryID int) (*models.Category, error) {
	category, err := s.authorizedCategory(ctx, currentUserID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, ErrCategoryAlreadyInactive
	}

	// освобождаем исходный slug
	slug, err := s.discontinuedSlug(ctx, category)
	if err != nil {
		return nil, err
	}
	category.IsActive = false
	category.Slug = slug
	if err := s.update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, currentUserID, categoryID int) error {
	category, err := s.authorizedCategory(ctx, currentUserID, categoryID)
	if err != nil {
		return err
	}
	usage := s.usage(category)
	if usage.IsUsed {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category %d: %w", category.ID, err)
	}
	s.logger.Info("category deleted", slog.Int("category_id", category.ID), slog.Int("organization_id", category.OrganizationID))
	s.publish(category, "deleted")
	return nil
}

func (s *categoryService) CopyTemplate(ctx context.Context, currentUserID, organizationID int, templateSlug string) (*models.Category, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}
	tmpl, ok := findTemplate(utils.NormalizeSlug(templateSlug))
	if !ok {
		return nil, ErrTemplateNotFound
	}

	slug, err := s.freeSlug(ctx, organizationID, tmpl.Slug, 0)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		OrganizationID: organizationID,
		Name:           tmpl.Name,
		Slug:           slug,
		Modality:       tmpl.Modality,
		MinAge:         tmpl.MinAge,
		MaxAge:         tmpl.MaxAge,
		IsActive:       true,
	}
	if err := s.create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) CategoryStats(ctx context.Context, currentUserID, organizationID int) (*models.CategoryStats, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ListByOrganization(ctx, organizationID, models.CategoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of organization %d: %w", organizationID, err)
	}

	stats := &models.CategoryStats{
		Total: len(categories),
		ByModality: map[models.Modality]int{
			models.ModalitySingles:         0,
			models.ModalityDoblesMasculino: 0,
			models.ModalityDoblesFemenino:  0,
			models.ModalityDoblesMixto:     0,
		},
	}
	for _, c := range categories {
		if c.IsActive {
			stats.Active++
			stats.ByModality[c.Modality]++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

func (s *categoryService) CountActiveCategories(ctx context.Context, currentUserID, organizationID int) (int, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return 0, err
	}
	active := true
	categories, err := s.categoryRepo.ListByOrganization(ctx, organizationID, models.CategoryFilter{IsActive: &active})
	if err != nil {
		return 0, fmt.Errorf("failed to count categories of organization %d: %w", organizationID, err)
	}
	return len(categories), nil
}

func (s *categoryService) ListCategories(ctx context.Context, currentUserID, organizationID int, filter models.CategoryFilter) ([]models.Category, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	if filter.Modality != nil && !filter.Modality.IsValid() {
		return nil, ErrInvalidModality
	}
	if filter.Level != nil && !filter.Level.IsValid() {
		return nil, ErrInvalidLevel
	}
	categories, err := s.categoryRepo.ListByOrganization(ctx, organizationID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of organization %d: %w", organizationID, err)
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, currentUserID, categoryID int) (*models.Category, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	return s.getCategory(ctx, categoryID)
}

func (s *categoryService) GetCategoryBySlug(ctx context.Context, currentUserID, organizationID int, slug string) (*models.Category, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetBySlug(ctx, organizationID, utils.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return category, nil
}

func (s *categoryService) CheckSlugAvailability(ctx context.Context, currentUserID, organizationID int, slug string, excludeID int) (*models.SlugAvailability, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	slug = utils.NormalizeSlug(slug)
	if !utils.IsValidSlug(slug) {
		return nil, ErrInvalidSlug
	}
	exists, err := s.categoryRepo.SlugExists(ctx, organizationID, slug, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}
	return &models.SlugAvailability{Available: !exists}, nil
}

func (s *categoryService) CategoryUsage(ctx context.Context, currentUserID, categoryID int) (*models.CategoryUsage, error) {
	category, err := s.GetCategory(ctx, currentUserID, categoryID)
	if err != nil {
		return nil, err
	}
	usage := s.usage(category)
	return &usage, nil
}

func (s *categoryService) Templates() []models.CategoryTemplate {
	return SystemTemplates()
}

// TODO: считать турниры категории, когда появится таблица tournaments.
func (s *categoryService) usage(_ *models.Category) models.CategoryUsage {
	return models.CategoryUsage{IsUsed: false, TournamentCount: 0}
}

func (s *categoryService) authorizedCategory(ctx context.Context, currentUserID, categoryID int) (*models.Category, error) {
	category, err := s.getCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, category.OrganizationID); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) getCategory(ctx context.Context, categoryID int) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", categoryID, err)
	}
	return category, nil
}

func (s *categoryService) ensureSlugFree(ctx context.Context, organizationID int, slug string, excludeID int) error {
	exists, err := s.categoryRepo.SlugExists(ctx, organizationID, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return ErrDuplicateSlug
	}
	return nil
}

// freeSlug возвращает base, а если он занят, то первый свободный из base-1, base-2, ...
func (s *categoryService) freeSlug(ctx context.Context, organizationID int, base string, excludeID int) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.categoryRepo.SlugExists(ctx, organizationID, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check category slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *categoryService) discontinuedSlug(ctx context.Context, category *models.Category) (string, error) {
	base := discontinuedSlugPattern.ReplaceAllString(category.Slug, "") + discontinuedSlugSuffix
	return s.freeSlug(ctx, category.OrganizationID, base, category.ID)
}

func (s *categoryService) create(ctx context.Context, category *models.Category) error {
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategorySlugConflict):
			return ErrDuplicateSlug
		case errors.Is(err, repositories.ErrOrganizationNotFound):
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	s.logger.Info("category created",
		slog.Int("category_id", category.ID),
		slog.Int("organization_id", category.OrganizationID),
		slog.String("slug", category.Slug),
	)
	s.publish(category, "created")
	return nil
}

func (s *categoryService) update(ctx context.Context, category *models.Category) error {
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategorySlugConflict):
			return ErrDuplicateSlug
		case errors.Is(err, repositories.ErrCategoryNotFound):
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	s.publish(category, "updated")
	return nil
}

func (s *categoryService) publish(category *models.Category, action string) {
	s.events.Publish(category.OrganizationID, realtime.EventCategoryChanged, map[string]interface{}{
		"category_id": category.ID,
		"action":      action,
	})
}
