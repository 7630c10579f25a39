package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/utils"
)

const (
	invitationDuration       = 7 * 24 * time.Hour
	maxTokenAttempts         = 3
	defaultInviterName       = "SuperAdmin"
	invitationLookupParallel = 8
)

// EventPublisher рассылает события организации подписчикам (websocket).
type EventPublisher interface {
	Publish(organizationID int, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, string, interface{}) {}

type CreateInvitationInput struct {
	Email          string  `json:"email" validate:"email"`
	Name           *string `json:"name,omitempty" validate:"omitempty,max=100"`
	OrganizationID int     `json:"-" validate:"required"`
}

type InvitationService interface {
	// CreateInvitation создает приглашение и отправляет письмо. Если письмо не ушло,
	// возвращаются и созданное приглашение (оно остается pending), и ошибка доставки.
	CreateInvitation(ctx context.Context, currentUserID int, input CreateInvitationInput) (*models.InvitationView, error)
	AcceptInvitation(ctx context.Context, currentUserID int, token string) (*models.AcceptInvitationResult, error)
	CancelInvitation(ctx context.Context, currentUserID int, invitationID int) error
	ResendInvitation(ctx context.Context, currentUserID int, invitationID int) error
	VerifyToken(ctx context.Context, token string) (*models.InvitationVerification, error)
	GetInvitation(ctx context.Context, currentUserID int, invitationID int) (*models.InvitationView, error)
	ListOrganizationInvitations(ctx context.Context, currentUserID int, organizationID int) ([]models.InvitationView, error)
}

type InvitationServiceDeps struct {
	Invitations   repositories.InvitationRepository
	Organizations repositories.OrganizationRepository
	Users         repositories.UserRepository
	Memberships   repositories.MembershipRepository
	Tx            repositories.Transactor
	Guard         AccessGuard
	Email         EmailService
	Events        EventPublisher
	Logger        *slog.Logger
	Now           func() time.Time
}

type invitationService struct {
	invitationRepo   repositories.InvitationRepository
	organizationRepo repositories.OrganizationRepository
	userRepo         repositories.UserRepository
	membershipRepo   repositories.MembershipRepository
	tx               repositories.Transactor
	guard            AccessGuard
	email            EmailService
	events           EventPublisher
	logger           *slog.Logger
	now              func() time.Time
}

func NewInvitationService(deps InvitationServiceDeps) InvitationService {
	s := &invitationService{
		invitationRepo:   deps.Invitations,
		organizationRepo: deps.Organizations,
		userRepo:         deps.Users,
		membershipRepo:   deps.Memberships,
		tx:               deps.Tx,
		guard:            deps.Guard,
		email:            deps.Email,
		events:           deps.Events,
		logger:           loggerOrDefault(deps.Logger),
		now:              deps.Now,
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *invitationService) CreateInvitation(ctx context.Context, currentUserID int, input CreateInvitationInput) (*models.InvitationView, error) {
	caller, err := s.guard.AuthorizeOrganization(ctx, currentUserID, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	input.Email = utils.NormalizeEmail(input.Email)
	input.Name = utils.TrimToNil(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	email := input.Email

	org, err := s.organizationRepo.GetByID(ctx, input.OrganizationID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizationNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization %d: %w", input.OrganizationID, err)
	}

	_, err = s.invitationRepo.FindPending(ctx, email, org.ID)
	switch {
	case err == nil:
		return nil, ErrPendingInvitationExists
	case !errors.Is(err, repositories.ErrInvitationNotFound):
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		isMember, mErr := s.membershipRepo.Exists(ctx, existing.ID, org.ID)
		if mErr != nil {
			return nil, fmt.Errorf("failed to check membership: %w", mErr)
		}
		if isMember {
			return nil, ErrAlreadyMember
		}
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	invitation := &models.Invitation{
		Email:          email,
		Name:           input.Name,
		OrganizationID: org.ID,
		InvitedBy:      caller.ID,
		Status:         models.InvitationPending,
	}

	created := false
	for attempt := 0; attempt < maxTokenAttempts && !created; attempt++ {
		invitation.Token, err = GenerateInvitationToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation token: %w", err)
		}
		invitation.ExpiresAt = s.now().Add(invitationDuration)

		err = s.invitationRepo.Create(ctx, invitation)
		switch {
		case err == nil:
			created = true
		case errors.Is(err, repositories.ErrInvitationTokenConflict):
			s.logger.Warn("invitation token collision, retrying", slog.Int("attempt", attempt+1))
		case errors.Is(err, repositories.ErrInvitationPendingDuplicate):
			return nil, ErrPendingInvitationExists
		case errors.Is(err, repositories.ErrOrganizationNotFound):
			return nil, ErrOrganizationNotFound
		default:
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
	}
	if !created {
		return nil, ErrTokenGenerationExhausted
	}

	s.logger.Info("invitation created",
		slog.Int("invitation_id", invitation.ID),
		slog.Int("organization_id", org.ID),
		slog.Int("invited_by", caller.ID),
	)
	s.events.Publish(org.ID, realtime.EventInvitationCreated, map[string]interface{}{
		"invitation_id": invitation.ID,
		"email":         invitation.Email,
	})

	view := &models.InvitationView{
		Invitation:       *invitation,
		Token:            invitation.Token,
		OrganizationName: org.Name,
		OrganizationSlug: org.Slug,
		InvitedByName:    caller.DisplayName(defaultInviterName),
	}

	if err := s.deliver(ctx, view); err != nil {
		return view, err
	}
	return view, nil
}

func (s *invitationService) AcceptInvitation(ctx context.Context, currentUserID int, token string) (*models.AcceptInvitationResult, error) {
	user, err := s.guard.CurrentUser(ctx, currentUserID)
	if err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	var (
		accepted *models.Invitation
		expired  *models.Invitation
	)
	now := s.now()

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		invitation, err := s.invitationRepo.GetByTokenForUpdate(ctx, exec, token)
		if err != nil {
			if errors.Is(err, repositories.ErrInvitationNotFound) {
				return ErrInvitationNotFound
			}
			return fmt.Errorf("failed to load invitation: %w", err)
		}

		if invitation.Status != models.InvitationPending {
			return statusError(invitation.Status)
		}

		if invitation.IsExpiredAt(now) {
			// отметка expired фиксируется, ошибка возвращается после коммита
			if err := s.invitationRepo.MarkExpired(ctx, exec, invitation.ID); err != nil {
				return fmt.Errorf("failed to mark invitation %d expired: %w", invitation.ID, err)
			}
			expired = invitation
			return nil
		}

		// пользователь мог измениться после проверки в guard
		user, err = s.userRepo.GetByIDForUpdate(ctx, exec, currentUserID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user %d: %w", currentUserID, err)
		}

		if utils.NormalizeEmail(user.Email) != utils.NormalizeEmail(invitation.Email) {
			return ErrInvitationWrongEmail
		}

		updateRole := user.Role == "" || user.Role == models.RoleJugador
		updateName := !user.HasName() && invitation.Name != nil && *invitation.Name != ""
		if updateRole || updateName {
			if updateRole {
				user.Role = models.RoleOrganizador
			}
			if updateName {
				user.Name = invitation.Name
			}
			if err := s.userRepo.Update(ctx, exec, user); err != nil {
				return fmt.Errorf("failed to update user %d: %w", user.ID, err)
			}
		}

		inviter := invitation.InvitedBy
		if err := s.membershipRepo.Create(ctx, exec, &models.Membership{
			UserID:         user.ID,
			OrganizationID: invitation.OrganizationID,
			AddedBy:        &inviter,
		}); err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		if err := s.invitationRepo.MarkAccepted(ctx, exec, invitation.ID, user.ID, now); err != nil {
			if errors.Is(err, repositories.ErrInvitationStatusConflict) {
				return ErrInvitationAlreadyUsed
			}
			return fmt.Errorf("failed to mark invitation %d accepted: %w", invitation.ID, err)
		}
		accepted = invitation
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired != nil {
		s.logger.Info("invitation expired on accept", slog.Int("invitation_id", expired.ID))
		return nil, ErrInvitationExpired
	}

	s.logger.Info("invitation accepted",
		slog.Int("invitation_id", accepted.ID),
		slog.Int("organization_id", accepted.OrganizationID),
		slog.Int("user_id", user.ID),
	)
	s.events.Publish(accepted.OrganizationID, realtime.EventInvitationAccepted, map[string]interface{}{
		"invitation_id": accepted.ID,
		"user_id":       user.ID,
	})

	result := &models.AcceptInvitationResult{OrganizationID: accepted.OrganizationID}
	org, err := s.organizationRepo.GetByID(ctx, accepted.OrganizationID)
	if err != nil {
		// приглашение уже принято; без slug клиент перейдет на общую страницу
		s.logger.Error("failed to load organization after accept", slog.Int("organization_id", accepted.OrganizationID), slog.Any("error", err))
		return result, nil
	}
	result.OrganizationSlug = org.Slug
	return result, nil
}

func (s *invitationService) CancelInvitation(ctx context.Context, currentUserID int, invitationID int) error {
	invitation, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, invitation.OrganizationID); err != nil {
		return err
	}
	if !isValidInvitationTransition(invitation.Status, models.InvitationCancelled) {
		return statusError(invitation.Status)
	}

	if err := s.invitationRepo.MarkCancelled(ctx, nil, invitation.ID); err != nil {
		if errors.Is(err, repositories.ErrInvitationStatusConflict) {
			// проиграли гонку: показываем актуальный статус
			current, getErr := s.getInvitation(ctx, invitationID)
			if getErr != nil {
				return getErr
			}
			return statusError(current.Status)
		}
		return fmt.Errorf("failed to cancel invitation %d: %w", invitationID, err)
	}

	s.logger.Info("invitation cancelled", slog.Int("invitation_id", invitation.ID), slog.Int("cancelled_by", currentUserID))
	s.events.Publish(invitation.OrganizationID, realtime.EventInvitationCancelled, map[string]interface{}{
		"invitation_id": invitation.ID,
	})
	return nil
}

func (s *invitationService) ResendInvitation(ctx context.Context, currentUserID int, invitationID int) error {
	invitation, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, invitation.OrganizationID); err != nil {
		return err
	}
	if invitation.Status != models.InvitationPending {
		return statusError(invitation.Status)
	}

	view, err := s.compose(ctx, invitation)
	if err != nil {
		return err
	}
	return s.deliver(ctx, view)
}

func (s *invitationService) VerifyToken(ctx context.Context, token string) (*models.InvitationVerification, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return &models.InvitationVerification{Valid: false, Reason: ErrInvitationNotFound.Error()}, nil
	}

	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return &models.InvitationVerification{Valid: false, Reason: ErrInvitationNotFound.Error()}, nil
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		return &models.InvitationVerification{Valid: false, Reason: statusError(invitation.Status).Error()}, nil
	}
	// только чтение: статус expired запишет accept
	if invitation.IsExpiredAt(s.now()) {
		return &models.InvitationVerification{Valid: false, Reason: ErrInvitationExpired.Error()}, nil
	}

	view, err := s.compose(ctx, invitation)
	if err != nil {
		return nil, err
	}
	view.Token = ""
	return &models.InvitationVerification{Valid: true, Invitation: view}, nil
}

func (s *invitationService) GetInvitation(ctx context.Context, currentUserID int, invitationID int) (*models.InvitationView, error) {
	invitation, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, invitation.OrganizationID); err != nil {
		return nil, err
	}
	return s.compose(ctx, invitation)
}

func (s *invitationService) ListOrganizationInvitations(ctx context.Context, currentUserID int, organizationID int) ([]models.InvitationView, error) {
	if _, err := s.guard.AuthorizeOrganization(ctx, currentUserID, organizationID); err != nil {
		return nil, err
	}

	invitations, err := s.invitationRepo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations of organization %d: %w", organizationID, err)
	}

	ids := make(map[int]struct{})
	for _, inv := range invitations {
		ids[inv.InvitedBy] = struct{}{}
		if inv.UserID != nil {
			ids[*inv.UserID] = struct{}{}
		}
	}
	users, err := s.loadUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		view := models.InvitationView{
			Invitation:    inv,
			Token:         inv.Token,
			InvitedByName: users[inv.InvitedBy].DisplayName(defaultInviterName),
		}
		if inv.UserID != nil {
			if u := users[*inv.UserID]; u.HasName() {
				view.UserName = u.Name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *invitationService) getInvitation(ctx context.Context, invitationID int) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvitationNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation %d: %w", invitationID, err)
	}
	return invitation, nil
}

// compose собирает представление приглашения из независимых чтений: организация и пригласивший.
func (s *invitationService) compose(ctx context.Context, invitation *models.Invitation) (*models.InvitationView, error) {
	var (
		org     *models.Organization
		inviter *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := s.organizationRepo.GetByID(gctx, invitation.OrganizationID)
		if err != nil && !errors.Is(err, repositories.ErrOrganizationNotFound) {
			return fmt.Errorf("failed to get organization %d: %w", invitation.OrganizationID, err)
		}
		org = o
		return nil
	})
	g.Go(func() error {
		u, err := s.userRepo.GetByID(gctx, invitation.InvitedBy)
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("failed to get inviter %d: %w", invitation.InvitedBy, err)
		}
		inviter = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &models.InvitationView{
		Invitation:    *invitation,
		Token:         invitation.Token,
		InvitedByName: inviter.DisplayName(defaultInviterName),
	}
	if org != nil {
		view.OrganizationName = org.Name
		view.OrganizationSlug = org.Slug
	}
	return view, nil
}

// loadUsers загружает пользователей параллельно; отсутствующие пропускаются.
func (s *invitationService) loadUsers(ctx context.Context, ids map[int]struct{}) (map[int]*models.User, error) {
	users := make(map[int]*models.User, len(ids))
	results := make(chan *models.User, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(invitationLookupParallel)
	for id := range ids {
		id := id
		g.Go(func() error {
			u, err := s.userRepo.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return nil
				}
				return fmt.Errorf("failed to get user %d: %w", id, err)
			}
			results <- u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for u := range results {
		users[u.ID] = u
	}
	return users, nil
}

func (s *invitationService) deliver(ctx context.Context, view *models.InvitationView) error {
	err := s.email.SendInvitation(ctx, InvitationEmail{
		To:               view.Email,
		RecipientName:    derefString(view.Name),
		OrganizationName: view.OrganizationName,
		InvitedByName:    view.InvitedByName,
		Token:            view.Token,
		ExpiresAt:        view.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("invitation %d email: %w", view.ID, err)
	}
	s.logger.Info("invitation email sent", slog.Int("invitation_id", view.ID))
	return nil
}
