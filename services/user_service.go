package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/utils"
)

const (
	landingSuperadmin = "/superadmin"
	landingJugador    = "/jugador"
)

type UpdateProfileInput struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

type UserService interface {
	Me(ctx context.Context, currentUserID int) (*models.CurrentUser, error)
	// EnsureRole сохраняет роль jugador, если у пользователя ее еще нет.
	EnsureRole(ctx context.Context, currentUserID int) (*models.User, error)
	UpdateProfile(ctx context.Context, currentUserID int, input UpdateProfileInput) (*models.User, error)
	LandingPath(ctx context.Context, user *models.User) (string, error)

	ListUsers(ctx context.Context, currentUserID int, filter models.UserFilter) ([]models.User, error)
	UserStats(ctx context.Context, currentUserID int) (*models.UserStats, error)
	SetRole(ctx context.Context, currentUserID, userID int, role models.UserRole) (*models.User, error)
	SetRoleByEmail(ctx context.Context, currentUserID int, email string, role models.UserRole) (*models.User, error)
}

type userService struct {
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	guard          AccessGuard
	logger         *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	guard AccessGuard,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		guard:          guard,
		logger:         loggerOrDefault(logger),
	}
}

func (s *userService) Me(ctx context.Context, currentUserID int) (*models.CurrentUser, error) {
	user, err := s.EnsureRole(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	landing, err := s.LandingPath(ctx, user)
	if err != nil {
		return nil, err
	}
	return &models.CurrentUser{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Image:       user.Image,
		Role:        user.EffectiveRole(),
		LandingPath: landing,
	}, nil
}

func (s *userService) EnsureRole(ctx context.Context, currentUserID int) (*models.User, error) {
	user, err := s.guard.CurrentUser(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	if user.Role != "" {
		return user, nil
	}

	user.Role = models.RoleJugador
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to assign default role to user %d: %w", user.ID, err)
	}
	s.logger.Info("default role assigned", slog.Int("user_id", user.ID))
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, currentUserID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.guard.CurrentUser(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = utils.TrimToNil(input.Name)
	}
	if input.Image != nil {
		user.Image = utils.TrimToNil(input.Image)
	}
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}
	return user, nil
}

// LandingPath: superadmin -> /superadmin, organizador с организацией -> ее админка, иначе /jugador.
func (s *userService) LandingPath(ctx context.Context, user *models.User) (string, error) {
	switch user.EffectiveRole() {
	case models.RoleSuperadmin:
		return landingSuperadmin, nil
	case models.RoleOrganizador:
		orgs, err := s.membershipRepo.ListOrganizationsByUser(ctx, user.ID)
		if err != nil {
			return "", fmt.Errorf("failed to list organizations of user %d: %w", user.ID, err)
		}
		if len(orgs) > 0 {
			return "/org/" + orgs[0].Slug + "/admin", nil
		}
	}
	return landingJugador, nil
}

func (s *userService) ListUsers(ctx context.Context, currentUserID int, filter models.UserFilter) ([]models.User, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	if filter.Role != nil && !filter.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	filter.Search = strings.TrimSpace(filter.Search)
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) UserStats(ctx context.Context, currentUserID int) (*models.UserStats, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	counts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	stats := &models.UserStats{
		Superadmins:   counts[models.RoleSuperadmin],
		Organizadores: counts[models.RoleOrganizador],
		Jugadores:     counts[models.RoleJugador],
	}
	stats.Total = stats.Superadmins + stats.Organizadores + stats.Jugadores
	return stats, nil
}

func (s *userService) SetRole(ctx context.Context, currentUserID, userID int, role models.UserRole) (*models.User, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return s.setRole(ctx, currentUserID, user, role)
}

func (s *userService) SetRoleByEmail(ctx context.Context, currentUserID int, email string, role models.UserRole) (*models.User, error) {
	if _, err := s.guard.RequireSuperadmin(ctx, currentUserID); err != nil {
		return nil, err
	}
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return s.setRole(ctx, currentUserID, user, role)
}

func (s *userService) setRole(ctx context.Context, currentUserID int, user *models.User, role models.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	previous := user.EffectiveRole()
	user.Role = role
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role of user %d: %w", user.ID, err)
	}
	s.logger.Info("user role changed",
		slog.Int("user_id", user.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(role)),
		slog.Int("changed_by", currentUserID),
	)
	return user, nil
}
