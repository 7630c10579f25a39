package handlers

import (
	"net/http"

	"github.com/Dosada05/matchsquad/services"
)

type MembershipHandler struct {
	membershipService services.MembershipService
}

func NewMembershipHandler(ms services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: ms}
}

// ListMembers godoc
// @Summary Участники и ожидающие приглашения
// @Tags members
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} map[string][]models.MemberEntry "members"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/members [get]
func (h *MembershipHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	entries, err := h.membershipService.ListMembers(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"members": entries})
}

// Stats godoc
// @Summary Статистика участников
// @Tags members
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} models.MemberStats "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/members/stats [get]
func (h *MembershipHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	stats, err := h.membershipService.MemberStats(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

// RemoveMember godoc
// @Summary Исключить участника
// @Tags members
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param userID path int true "ID пользователя"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/members/{userID} [delete]
func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(r.Context(), userID, orgID, memberID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyOrganizations godoc
// @Summary Организации текущего пользователя
// @Tags users
// @Produce json
// @Success 200 {object} map[string][]models.UserOrganization "organizations"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /users/me/organizations [get]
func (h *MembershipHandler) MyOrganizations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orgs, err := h.membershipService.ListUserOrganizations(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organizations": orgs})
}
