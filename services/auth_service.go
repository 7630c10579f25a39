package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/repositories"
	"github.com/Dosada05/matchsquad/storage"
	"github.com/Dosada05/matchsquad/utils"
)

const (
	otpTTL         = 15 * time.Minute
	maxOTPAttempts = 5
	sessionTTL     = 24 * time.Hour
)

// SignInResult - ответ после успешной проверки кода.
type SignInResult struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
	LandingPath string       `json:"landing_path"`
}

type AuthService interface {
	// RequestCode генерирует новый код (предыдущий перестает действовать) и отправляет его на email.
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*SignInResult, error)
}

type AuthServiceDeps struct {
	Users     repositories.UserRepository
	OTP       storage.OTPStore
	Email     EmailService
	Landing   func(ctx context.Context, user *models.User) (string, error)
	JWTSecret []byte
	Logger    *slog.Logger
	Now       func() time.Time
}

type authService struct {
	userRepo  repositories.UserRepository
	otpStore  storage.OTPStore
	email     EmailService
	landing   func(ctx context.Context, user *models.User) (string, error)
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(deps AuthServiceDeps) AuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	landing := deps.Landing
	if landing == nil {
		landing = func(context.Context, *models.User) (string, error) { return landingJugador, nil }
	}
	return &authService{
		userRepo:  deps.Users,
		otpStore:  deps.OTP,
		email:     deps.Email,
		landing:   landing,
		jwtSecret: deps.JWTSecret,
		logger:    loggerOrDefault(deps.Logger),
		now:       now,
	}
}

func (s *authService) RequestCode(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return ErrInvalidEmail
	}

	code, err := GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	hash, err := utils.HashCode(code)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}
	if err := s.otpStore.Save(ctx, email, hash, otpTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.email.SendOTP(ctx, email, code); err != nil {
		s.logger.Error("failed to send sign-in code", slog.String("email", email), slog.Any("error", err))
		return err
	}
	s.logger.Info("sign-in code sent", slog.String("email", email))
	return nil
}

func (s *authService) VerifyCode(ctx context.Context, email, code string) (*SignInResult, error) {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if code == "" {
		return nil, ErrOTPInvalid
	}

	entry, err := s.otpStore.Get(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrOTPNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("failed to load code: %w", err)
	}
	if entry.Attempts >= maxOTPAttempts {
		if err := s.otpStore.Delete(ctx, email); err != nil {
			s.logger.Warn("failed to discard code", slog.String("email", email), slog.Any("error", err))
		}
		return nil, ErrOTPTooManyAttempts
	}
	if !utils.CheckCodeHash(code, entry.Hash) {
		if _, err := s.otpStore.IncrementAttempts(ctx, email); err != nil && !errors.Is(err, storage.ErrOTPNotFound) {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		return nil, ErrOTPInvalid
	}
	if err := s.otpStore.Delete(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to discard code: %w", err)
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if user.EmailVerifiedAt == nil {
		if err := s.userRepo.MarkEmailVerified(ctx, user.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark email verified: %w", err)
		}
		user.EmailVerifiedAt = &now
	}

	expiresAt := now.Add(sessionTTL)
	token, err := s.issueToken(user, now, expiresAt)
	if err != nil {
		return nil, err
	}
	landing, err := s.landing(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", slog.Int("user_id", user.ID), slog.String("role", string(user.EffectiveRole())))
	return &SignInResult{Token: token, ExpiresAt: expiresAt, User: user, LandingPath: landing}, nil
}

func (s *authService) findOrCreateUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	user = &models.User{Email: email, Role: models.RoleJugador}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			// параллельный вход с тем же email
			return s.userRepo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created", slog.Int("user_id", user.ID))
	return user, nil
}

func (s *authService) issueToken(user *models.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.EffectiveRole()),
		"exp":     expiresAt.Unix(),
		"iat":     issuedAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
