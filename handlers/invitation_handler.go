package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/matchsquad/services"
)

type InvitationHandler struct {
	invitationService services.InvitationService
}

func NewInvitationHandler(is services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: is}
}

type createInvitationRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

// Create godoc
// @Summary Пригласить организатора
// @Description Если письмо не ушло, ответ содержит invitation_id сохраненного приглашения.
// @Tags invitations
// @Accept json
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param input body handlers.createInvitationRequest true "Email и имя"
// @Success 201 {object} map[string]models.InvitationView "invitation"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 409 {object} map[string]string "Уже есть активное приглашение или участник"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Failure 502 {object} map[string]interface{} "Приглашение создано, письмо не отправлено"
// @Failure 503 {object} map[string]interface{} "Почта не настроена"
// @Security BearerAuth
// @Router /organizations/{organizationID}/invitations [post]
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	var input createInvitationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.invitationService.CreateInvitation(r.Context(), userID, services.CreateInvitationInput{
		Email:          input.Email,
		Name:           input.Name,
		OrganizationID: orgID,
	})
	if err != nil {
		if view != nil {
			// приглашение сохранено, не ушло только письмо
			status := http.StatusBadGateway
			if errors.Is(err, services.ErrEmailNotConfigured) {
				status = http.StatusServiceUnavailable
			}
			respond(w, r, status, jsonResponse{
				"error":         err.Error(),
				"invitation_id": view.ID,
			})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"invitation": view})
}

// List godoc
// @Summary Приглашения организации
// @Tags invitations
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} map[string][]models.InvitationView "invitations"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/invitations [get]
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	views, err := h.invitationService.ListOrganizationInvitations(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"invitations": views})
}

// Get godoc
// @Summary Приглашение по ID
// @Tags invitations
// @Produce json
// @Param invitationID path int true "ID приглашения"
// @Success 200 {object} map[string]models.InvitationView "invitation"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /invitations/{invitationID} [get]
func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	view, err := h.invitationService.GetInvitation(r.Context(), userID, invitationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"invitation": view})
}

// Verify - публичная проверка токена для страницы принятия приглашения.
// @Summary Проверить токен приглашения
// @Tags invitations
// @Produce json
// @Param token query string true "Токен из ссылки"
// @Success 200 {object} models.InvitationVerification "OK"
// @Failure 500 {object} map[string]string "Внутренняя ошибка"
// @Router /invitations/verify [get]
func (h *InvitationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	res, err := h.invitationService.VerifyToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

// Accept godoc
// @Summary Принять приглашение
// @Tags invitations
// @Accept json
// @Produce json
// @Param input body handlers.acceptInvitationRequest true "Токен"
// @Success 200 {object} models.AcceptInvitationResult "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Приглашение на другой email"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 410 {object} map[string]string "Срок приглашения истек"
// @Security BearerAuth
// @Router /invitations/accept [post]
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input acceptInvitationRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.invitationService.AcceptInvitation(r.Context(), userID, input.Token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

// Cancel godoc
// @Summary Отменить приглашение
// @Tags invitations
// @Produce json
// @Param invitationID path int true "ID приглашения"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /invitations/{invitationID}/cancel [post]
func (h *InvitationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	if err := h.invitationService.CancelInvitation(r.Context(), userID, invitationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resend godoc
// @Summary Отправить письмо повторно
// @Tags invitations
// @Produce json
// @Param invitationID path int true "ID приглашения"
// @Success 200 {object} map[string]string "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 410 {object} map[string]string "Срок приглашения истек"
// @Failure 502 {object} map[string]string "Письмо не отправлено"
// @Security BearerAuth
// @Router /invitations/{invitationID}/resend [post]
func (h *InvitationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	invitationID, ok := pathID(w, r, "invitationID")
	if !ok {
		return
	}

	if err := h.invitationService.ResendInvitation(r.Context(), userID, invitationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"message": "invitation email sent"})
}
