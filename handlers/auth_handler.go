package handlers

import (
	"net/http"

	"github.com/Dosada05/matchsquad/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

type requestCodeRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RequestCode отправляет одноразовый код на email.
// @Summary Запросить одноразовый код
// @Description Предыдущий код перестает действовать. Код действует 15 минут.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body handlers.requestCodeRequest true "Email пользователя"
// @Success 202 {object} map[string]string "Код отправлен"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Failure 502 {object} map[string]string "Письмо не отправлено"
// @Router /auth/otp/request [post]
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var input requestCodeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.authService.RequestCode(r.Context(), input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusAccepted, jsonResponse{"message": "code sent"})
}

// VerifyCode godoc
// @Summary Войти по одноразовому коду
// @Description Создает пользователя при первом входе. После пяти неверных попыток код сгорает.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body handlers.verifyCodeRequest true "Email и код"
// @Success 200 {object} services.SignInResult "JWT и страница после входа"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Failure 500 {object} map[string]string "Внутренняя ошибка"
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var input verifyCodeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.VerifyCode(r.Context(), input.Email, input.Code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, result)
}
