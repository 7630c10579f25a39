package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/storage"
	"github.com/Dosada05/matchsquad/utils"
)

// LogoURLResolver строит публичный URL логотипа по ключу объекта.
type LogoURLResolver interface {
	PublicURL(key string) string
}

func resolveLogoURL(resolver LogoURLResolver, key *string) *string {
	if resolver == nil || key == nil || *key == "" {
		return nil
	}
	u := resolver.PublicURL(*key)
	if u == "" {
		return nil
	}
	return &u
}

type OrganizationInput struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Slug        string              `json:"slug" validate:"slug"`
	Email       string              `json:"email" validate:"email"`
	Description *string             `json:"description,omitempty" validate:"omitempty,max=2000"`
	Phone       *string             `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address     *models.Address     `json:"address,omitempty"`
	Hours       *string             `json:"hours,omitempty" validate:"omitempty,max=500"`
	SocialLinks *models.SocialLinks `json:"social_links,omitempty"`
}

func organizationInputOf(org *models.Organization) OrganizationInput {
	return OrganizationInput{
		Name:        org.Name,
		Slug:        org.Slug,
		Email:       org.Email,
		Description: org.Description,
		Phone:       org.Phone,
		Address:     org.Address,
		Hours:       org.Hours,
		SocialLinks: org.SocialLinks,
	}
}

// UpdateOrganizationInput - частичное обновление: nil означает "не менять".
type UpdateOrganizationInput struct {
	Name        *string             `json:"name,omitempty"`
	Slug        *string             `json:"slug,omitempty"`
	Email       *string             `json:"email,omitempty"`
	Description *string             `json:"description,omitempty"`
	Phone       *string             `json:"phone,omitempty"`
	Address     *models.Address     `json:"address,omitempty"`
	Hours       *string             `json:"hours,omitempty"`
	SocialLinks *models.SocialLinks `json:"social_links,omitempty"`
}

type OrganizationService interface {
	CreateOrganization(ctx context.Context, currentUserID int, input OrganizationInput) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, currentUserID, organizationID int, input UpdateOrganizationInput) (*models.Organization, error)
	SetOrganizationActive(ctx context.Context, currentUserID, organizationID int, active bool) error
	DeleteOrganization(ctx context.Context, currentUserID, organizationID int) error
	ListOrganizations(ctx context.Context, currentUserID int, filter models.OrganizationFilter) ([]models.Organization, error)
	// SearchOrganizations ищет среди активных по имени, slug и email без учета регистра.
	SearchOrganizations(ctx context.Context, currentUserID int, term string) ([]models.Organization, error)
	CountActiveOrganizations(ctx context.Context, currentUserID int) (int, error)
	CheckSlugAvailability(ctx context.Context, currentUserID int, slug string, excludeID int) (*models.SlugAvailability, error)
	GetOrganization(ctx context.Context, currentUserID, organizationID int) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, currentUserID int, slug string) (*models.Organization, error)
	UploadLogo(ctx context.Context, currentUserID, organizationID int, filename, contentType string, reader io.Reader) (*models.Organization, error)
}

type organizationService struct {
	organizationRepo repositories.OrganizationRepository
	guard            AccessGuard
	uploader         storage.FileUploader
	events           EventPublisher
	logger           *slog.Logger
}

// NewOrganizationService: uploader может быть nil, тогда загрузка логотипа недоступна.
func NewOrganizationService(
	organizationRepo repositories.OrganizationRepository,
	guard AccessGuard,
	uploader storage.FileUploader,
	events EventPublisher,
	logger *slog.Logger,
) OrganizationService {
	if events == nil {
		events = noopPublisher{}
	}
	return &organizationService{
		organizationRepo: organizationRepo,
		guard:            guard,
		uploader:         uploader,
		events:           events,
		logger:           loggerOrDefault(logger),
	}
}

func (s *organizationService) CreateOrganization(ctx context.Context, currentUserID int, input OrganizationInput) (*models.Organization, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:        strings.TrimSpace(input.Name),
		Slug:        utils.NormalizeSlug(input.Slug),
		Email:       utils.NormalizeEmail(input.Email),
		Description: utils.TrimToNil(input.Description),
		Phone:       utils.TrimToNil(input.Phone),
		Address:     input.Address,
		Hours:       utils.TrimToNil(input.Hours),
		SocialLinks: input.SocialLinks,
		Active:      true,
	}
	if err := validateInput(organizationInputOf(org)); err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, org.Slug, 0); err != nil {
		return nil, err
	}
	s.warnDuplicateEmail(ctx, org.Email, 0)

	if err := s.organizationRepo.Create(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrOrganizationSlugConflict) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Info("organization created", slog.Int("organization_id", org.ID), slog.String("slug", org.Slug))
	return org, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, currentUserID, organizationID int, input UpdateOrganizationInput) (*models.Organization, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	org, err := s.getOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = strings.TrimSpace(*input.Name)
	}
	slugChanged := false
	if input.Slug != nil {
		slug := utils.NormalizeSlug(*input.Slug)
		slugChanged = slug != org.Slug
		org.Slug = slug
	}
	emailChanged := false
	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		emailChanged = email != org.Email
		org.Email = email
	}
	if input.Description != nil {
		org.Description = utils.TrimToNil(input.Description)
	}
	if input.Phone != nil {
		org.Phone = utils.TrimToNil(input.Phone)
	}
	if input.Address != nil {
		org.Address = input.Address
	}
	if input.Hours != nil {
		org.Hours = utils.TrimToNil(input.Hours)
	}
	if input.SocialLinks != nil {
		org.SocialLinks = input.SocialLinks
	}

	if err := validateInput(organizationInputOf(org)); err != nil {
		return nil, err
	}
	if slugChanged {
		if err := s.ensureSlugFree(ctx, org.Slug, org.ID); err != nil {
			return nil, err
		}
	}
	if emailChanged {
		s.warnDuplicateEmail(ctx, org.Email, org.ID)
	}

	if err := s.organizationRepo.Update(ctx, org); err != nil {
		switch {
		case errors.Is(err, repositories.ErrOrganizationSlugConflict):
			return nil, ErrDuplicateSlug
		case errors.Is(err, repositories.ErrOrganizationNotFound):
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to update organization %d: %w", org.ID, err)
	}

	s.events.Publish(org.ID, realtime.EventOrganizationUpdated, map[string]interface{}{"organization_id": org.ID})
	org.LogoURL = resolveLogoURL(s.uploader, org.LogoKey)
	return org, nil
}

func (s *organizationService) SetOrganizationActive(ctx context.Context, currentUserID, organizationID int, active bool) error {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return err
	}
	if err := s.organizationRepo.SetActive(ctx, organizationID, active); err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to set organization %d active=%t: %w", organizationID, active, err)
	}
	s.logger.Info("organization active flag changed", slog.Int("organization_id", organizationID), slog.Bool("active", active))
	s.events.Publish(organizationID, realtime.EventOrganizationUpdated, map[string]interface{}{
		"organization_id": organizationID,
		"active":          active,
	})
	return nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, currentUserID, organizationID int) error {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return err
	}
	org, err := s.getOrganization(ctx, organizationID)
	if err != nil {
		return err
	}

	categories, invitations, err := s.organizationRepo.CountDependencies(ctx, organizationID)
	if err != nil {
		return fmt.Errorf("failed to check dependencies of organization %d: %w", organizationID, err)
	}
	if categories > 0 {
		return ErrOrganizationHasCategory
	}
	if invitations > 0 {
		return ErrOrganizationHasInvites
	}

	if err := s.organizationRepo.Delete(ctx, organizationID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrOrganizationNotFound):
			return ErrOrganizationNotFound
		case errors.Is(err, repositories.ErrOrganizationInUse):
			return ErrOrganizationHasCategory
		}
		return fmt.Errorf("failed to delete organization %d: %w", organizationID, err)
	}

	if org.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *org.LogoKey); err != nil {
			s.logger.Warn("failed to delete logo of deleted organization", slog.Int("organization_id", organizationID), slog.Any("error", err))
		}
	}
	s.logger.Info("organization deleted", slog.Int("organization_id", organizationID))
	return nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, currentUserID int, filter models.OrganizationFilter) ([]models.Organization, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	orgs, err := s.organizationRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	for i := range orgs {
		orgs[i].LogoURL = resolveLogoURL(s.uploader, orgs[i].LogoKey)
	}
	return orgs, nil
}

func (s *organizationService) SearchOrganizations(ctx context.Context, currentUserID int, term string) ([]models.Organization, error) {
	active := true
	return s.ListOrganizations(ctx, currentUserID, models.OrganizationFilter{Active: &active, Search: term})
}

func (s *organizationService) CountActiveOrganizations(ctx context.Context, currentUserID int) (int, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return 0, err
	}
	count, err := s.organizationRepo.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active organizations: %w", err)
	}
	return count, nil
}

func (s *organizationService) CheckSlugAvailability(ctx context.Context, currentUserID int, slug string, excludeID int) (*models.SlugAvailability, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	slug = utils.NormalizeSlug(slug)
	if !utils.IsValidSlug(slug) {
		return nil, ErrInvalidSlug
	}
	exists, err := s.organizationRepo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check organization slug: %w", err)
	}
	return &models.SlugAvailability{Available: !exists}, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, currentUserID, organizationID int) (*models.Organization, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}
	org, err := s.getOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	org.LogoURL = resolveLogoURL(s.uploader, org.LogoKey)
	return org, nil
}

func (s *organizationService) GetOrganizationBySlug(ctx context.Context, currentUserID int, slug string) (*models.Organization, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	org, err := s.organizationRepo.GetBySlug(ctx, utils.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, org.ID); err != nil {
		return nil, err
	}
	org.LogoURL = resolveLogoURL(s.uploader, org.LogoKey)
	return org, nil
}

func (s *organizationService) UploadLogo(ctx context.Context, currentUserID, organizationID int, filename, contentType string, reader io.Reader) (*models.Organization, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidImageType
	}

	org, err := s.getOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	previousKey := org.LogoKey

	key := storage.OrganizationLogoKey(organizationID, filename)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload logo for organization %d: %w", organizationID, err)
	}

	if err := s.organizationRepo.UpdateLogo(ctx, organizationID, &key); err != nil {
		// новый объект больше никому не нужен
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up uploaded logo", slog.String("key", key), slog.Any("error", delErr))
		}
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to save logo key for organization %d: %w", organizationID, err)
	}

	if previousKey != nil && *previousKey != "" && *previousKey != key {
		if err := s.uploader.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn("failed to delete previous logo", slog.String("key", *previousKey), slog.Any("error", err))
		}
	}

	org.LogoKey = &key
	org.LogoURL = resolveLogoURL(s.uploader, org.LogoKey)
	s.events.Publish(organizationID, realtime.EventOrganizationUpdated, map[string]interface{}{
		"organization_id": organizationID,
		"logo_url":        derefString(org.LogoURL),
	})
	return org, nil
}

func (s *organizationService) getOrganization(ctx context.Context, organizationID int) (*models.Organization, error) {
	org, err := s.organizationRepo.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization %d: %w", organizationID, err)
	}
	return org, nil
}

func (s *organizationService) ensureSlugFree(ctx context.Context, slug string, excludeID int) error {
	exists, err := s.organizationRepo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check organization slug: %w", err)
	}
	if exists {
		return ErrDuplicateSlug
	}
	return nil
}

// warnDuplicateEmail: одинаковый контактный email разрешен, только пишем предупреждение.
func (s *organizationService) warnDuplicateEmail(ctx context.Context, email string, excludeID int) {
	exists, err := s.organizationRepo.EmailExists(ctx, email, excludeID)
	if err != nil {
		s.logger.Warn("failed to check duplicate organization email", slog.Any("error", err))
		return
	}
	if exists {
		s.logger.Warn("organization contact email is already used", slog.String("email", email))
	}
}
