package services

import "errors"

// Ошибки сервисного слоя. Тексты предназначены для прямого показа пользователю.
var (
	// Аутентификация и авторизация
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrInsufficientPermission = errors.New("insufficient permission")

	// Сущности
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrTemplateNotFound     = errors.New("category template not found")

	// Валидация
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidSlug      = errors.New("invalid slug")
	ErrInvalidAgeRange  = errors.New("minimum age cannot be greater than maximum age")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidModality  = errors.New("invalid modality")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrInvalidImageType = errors.New("file must be an image")

	// Конфликты
	ErrDuplicateSlug            = errors.New("duplicate slug")
	ErrPendingInvitationExists  = errors.New("a pending invitation already exists for this email")
	ErrAlreadyMember            = errors.New("user is already a member of this organization")
	ErrCategoryAlreadyInactive  = errors.New("category is already inactive")
	ErrCategoryInUse            = errors.New("category is used by tournaments")
	ErrOrganizationHasCategory  = errors.New("organization has categories and cannot be deleted")
	ErrOrganizationHasInvites   = errors.New("organization has invitations and cannot be deleted")
	ErrTokenGenerationExhausted = errors.New("failed to generate a unique invitation token")

	// Состояние приглашения
	ErrInvitationAlreadyUsed = errors.New("invitation already used")
	ErrInvitationCancelled   = errors.New("invitation was cancelled")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrInvitationWrongEmail  = errors.New("invitation was sent to a different email")
	ErrInvitationNotPending  = errors.New("invitation is not pending")

	// Одноразовый код
	ErrOTPInvalid         = errors.New("code is invalid or expired")
	ErrOTPTooManyAttempts = errors.New("too many attempts, request a new code")

	// Внешние зависимости
	ErrEmailNotConfigured   = errors.New("email delivery is not configured")
	ErrEmailDeliveryFailed  = errors.New("email delivery failed")
	ErrStorageNotConfigured = errors.New("file storage is not configured")
)
