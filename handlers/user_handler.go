package handlers

import (
	"net/http"

	"github.com/Dosada05/matchsquad/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// Me возвращает текущего пользователя и страницу, на которую его отправить после входа.
// @Summary Текущий пользователь
// @Tags users
// @Produce json
// @Success 200 {object} map[string]models.CurrentUser "user"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	me, err := h.userService.Me(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": me})
}

// EnsureRole godoc
// @Summary Назначить роль jugador, если роли нет
// @Tags users
// @Produce json
// @Success 200 {object} map[string]models.User "user"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /users/me/ensure-role [post]
func (h *UserHandler) EnsureRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.EnsureRole(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}

// UpdateMe godoc
// @Summary Обновить профиль
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.UpdateProfileInput true "Имя и аватар"
// @Success 200 {object} map[string]models.User "user"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}
