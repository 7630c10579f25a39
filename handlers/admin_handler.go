package handlers

import (
	"net/http"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/services"
)

type AdminUserHandler struct {
	userService services.UserService
}

func NewAdminUserHandler(s services.UserService) *AdminUserHandler {
	return &AdminUserHandler{userService: s}
}

type setRoleRequest struct {
	Role models.UserRole `json:"role"`
}

type setRoleByEmailRequest struct {
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Только для superadmin.
// @Tags admin
// @Produce json
// @Param role query string false "Роль: superadmin, organizador, jugador"
// @Param search query string false "Поиск по имени и email"
// @Success 200 {object} map[string][]models.User "users"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := models.UserFilter{Search: q.Get("search")}
	if role := q.Get("role"); role != "" {
		ur := models.UserRole(role)
		filter.Role = &ur
	}

	users, err := h.userService.ListUsers(r.Context(), userID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"users": users})
}

// Stats godoc
// @Summary Число пользователей по ролям
// @Tags admin
// @Produce json
// @Success 200 {object} models.UserStats "OK"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /admin/users/stats [get]
func (h *AdminUserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.userService.UserStats(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

// SetRole godoc
// @Summary Сменить роль пользователя
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path int true "ID пользователя"
// @Param input body handlers.setRoleRequest true "Новая роль"
// @Success 200 {object} map[string]models.User "user"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /admin/users/{userID}/role [put]
func (h *AdminUserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var input setRoleRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.SetRole(r.Context(), userID, targetID, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}

// SetRoleByEmail godoc
// @Summary Сменить роль по email
// @Tags admin
// @Accept json
// @Produce json
// @Param input body handlers.setRoleByEmailRequest true "Email и роль"
// @Success 200 {object} map[string]models.User "user"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /admin/users/role-by-email [put]
func (h *AdminUserHandler) SetRoleByEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input setRoleByEmailRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.SetRoleByEmail(r.Context(), userID, input.Email, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}
