package services

import (
	"log/slog"

	"github.com/Dosada05/matchsquad/models"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isValidInvitationTransition: из pending можно перейти в любой терминальный статус,
// терминальные статусы неизменяемы.
func isValidInvitationTransition(current, next models.InvitationStatus) bool {
	allowedTransitions := map[models.InvitationStatus][]models.InvitationStatus{
		models.InvitationPending:   {models.InvitationAccepted, models.InvitationExpired, models.InvitationCancelled},
		models.InvitationAccepted:  {},
		models.InvitationExpired:   {},
		models.InvitationCancelled: {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// statusError - ошибка для попытки действия над приглашением в статусе status.
func statusError(status models.InvitationStatus) error {
	switch status {
	case models.InvitationAccepted:
		return ErrInvitationAlreadyUsed
	case models.InvitationCancelled:
		return ErrInvitationCancelled
	case models.InvitationExpired:
		return ErrInvitationExpired
	default:
		return ErrInvitationNotPending
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
