package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/repositories"
)

type MembershipService interface {
	// ListMembers объединяет участников организации и ожидающие приглашения, новые сначала.
	ListMembers(ctx context.Context, currentUserID, organizationID int) ([]models.MemberEntry, error)
	MemberStats(ctx context.Context, currentUserID, organizationID int) (*models.MemberStats, error)
	RemoveMember(ctx context.Context, currentUserID, organizationID, userID int) error
	ListUserOrganizations(ctx context.Context, currentUserID int) ([]models.UserOrganization, error)
}

type membershipService struct {
	membershipRepo repositories.MembershipRepository
	invitationRepo repositories.InvitationRepository
	guard          AccessGuard
	logos          LogoURLResolver
	events         EventPublisher
	logger         *slog.Logger
}

func NewMembershipService(
	membershipRepo repositories.MembershipRepository,
	invitationRepo repositories.InvitationRepository,
	guard AccessGuard,
	logos LogoURLResolver,
	events EventPublisher,
	logger *slog.Logger,
) MembershipService {
	if events == nil {
		events = noopPublisher{}
	}
	return &membershipService{
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		guard:          guard,
		logos:          logos,
		events:         events,
		logger:         loggerOrDefault(logger),
	}
}

func (s *membershipService) ListMembers(ctx context.Context, currentUserID, organizationID int) ([]models.MemberEntry, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}

	var (
		members     []repositories.MemberUser
		invitations []models.Invitation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.membershipRepo.ListUsersByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() error {
		var err error
		invitations, err = s.invitationRepo.ListPendingByOrganization(gctx, organizationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list members of organization %d: %w", organizationID, err)
	}

	entries := make([]models.MemberEntry, 0, len(members)+len(invitations))
	for _, m := range members {
		userID := m.User.ID
		role := m.User.EffectiveRole()
		entries = append(entries, models.MemberEntry{
			Type:    models.MemberEntryUser,
			UserID:  &userID,
			Email:   m.User.Email,
			Name:    m.User.Name,
			Image:   m.User.Image,
			Role:    &role,
			AddedAt: m.Membership.AddedAt,
			AddedBy: m.Membership.AddedBy,
		})
	}
	for _, inv := range invitations {
		invitationID := inv.ID
		invitedBy := inv.InvitedBy
		expiresAt := inv.ExpiresAt
		entries = append(entries, models.MemberEntry{
			Type:         models.MemberEntryInvitation,
			InvitationID: &invitationID,
			Email:        inv.Email,
			Name:         inv.Name,
			AddedAt:      inv.CreatedAt,
			AddedBy:      &invitedBy,
			ExpiresAt:    &expiresAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})
	return entries, nil
}

func (s *membershipService) MemberStats(ctx context.Context, currentUserID, organizationID int) (*models.MemberStats, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}

	var users, pending int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.membershipRepo.CountByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.invitationRepo.CountPendingByOrganization(gctx, organizationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count members of organization %d: %w", organizationID, err)
	}

	return &models.MemberStats{
		TotalUsers:         users,
		ActiveUsers:        users,
		PendingInvitations: pending,
	}, nil
}

func (s *membershipService) RemoveMember(ctx context.Context, currentUserID, organizationID, userID int) error {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return err
	}

	if err := s.membershipRepo.Delete(ctx, userID, organizationID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove user %d from organization %d: %w", userID, organizationID, err)
	}

	s.logger.Info("member removed",
		slog.Int("organization_id", organizationID),
		slog.Int("user_id", userID),
		slog.Int("removed_by", currentUserID),
	)
	s.events.Publish(organizationID, realtime.EventMemberRemoved, map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *membershipService) ListUserOrganizations(ctx context.Context, currentUserID int) ([]models.UserOrganization, error) {
	if _, err := s.guard.CurrentUser(ctx, currentUserID); err != nil {
		return nil, err
	}
	orgs, err := s.membershipRepo.ListOrganizationsByUser(ctx, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations of user %d: %w", currentUserID, err)
	}
	for i := range orgs {
		orgs[i].LogoURL = resolveLogoURL(s.logos, orgs[i].LogoKey)
	}
	return orgs, nil
}
