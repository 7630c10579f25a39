package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/repositories"
)

// Decision - результат проверки доступа к организации.
type Decision struct {
	Allowed bool
	Reason  error
}

// Evaluate - единственный предикат доступа к организации:
// superadmin - всегда; organizador - только при наличии связи с организацией; остальные - нет.
func Evaluate(caller *models.User, isMember bool) Decision {
	if caller == nil {
		return Decision{Reason: ErrNotAuthenticated}
	}
	switch caller.EffectiveRole() {
	case models.RoleSuperadmin:
		return Decision{Allowed: true}
	case models.RoleOrganizador:
		if isMember {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: ErrInsufficientPermission}
}

// AccessGuard загружает вызывающего и его связь с организацией при каждом вызове, без кеша.
type AccessGuard interface {
	// AuthorizeOrganization возвращает вызывающего, если ему разрешено действовать в организации.
	AuthorizeOrganization(ctx context.Context, callerID, organizationID int) (*models.User, error)
	RequireSuperadmin(ctx context.Context, callerID int) (*models.User, error)
	// CurrentUser загружает аутентифицированного пользователя.
	CurrentUser(ctx context.Context, callerID int) (*models.User, error)
}

type accessGuard struct {
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
}

func NewAccessGuard(userRepo repositories.UserRepository, membershipRepo repositories.MembershipRepository) AccessGuard {
	return &accessGuard{userRepo: userRepo, membershipRepo: membershipRepo}
}

func (g *accessGuard) CurrentUser(ctx context.Context, callerID int) (*models.User, error) {
	if callerID <= 0 {
		return nil, ErrNotAuthenticated
	}
	user, err := g.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// токен есть, а пользователя уже нет
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load caller %d: %w", callerID, err)
	}
	return user, nil
}

func (g *accessGuard) AuthorizeOrganization(ctx context.Context, callerID, organizationID int) (*models.User, error) {
	caller, err := g.CurrentUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	isMember := false
	if caller.EffectiveRole() == models.RoleOrganizador {
		isMember, err = g.membershipRepo.Exists(ctx, caller.ID, organizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership of user %d in organization %d: %w", caller.ID, organizationID, err)
		}
	}

	if decision := Evaluate(caller, isMember); !decision.Allowed {
		return nil, decision.Reason
	}
	return caller, nil
}

func (g *accessGuard) RequireSuperadmin(ctx context.Context, callerID int) (*models.User, error) {
	caller, err := g.CurrentUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller.EffectiveRole() != models.RoleSuperadmin {
		return nil, ErrInsufficientPermission
	}
	return caller, nil
}
