package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/services"
)

const maxLogoBytes = 5 << 20

type OrganizationHandler struct {
	organizationService services.OrganizationService
}

func NewOrganizationHandler(s services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: s}
}

// Create godoc
// @Summary Создать организацию
// @Tags organizations
// @Accept json
// @Produce json
// @Param input body services.OrganizationInput true "Данные организации"
// @Success 201 {object} map[string]models.Organization "organization"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 409 {object} map[string]string "Slug уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /organizations [post]
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.OrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.organizationService.CreateOrganization(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"organization": org})
}

// List: ?active=true|false, ?search=. Поиск без active ищет только среди активных.
// @Summary Список организаций
// @Tags organizations
// @Produce json
// @Param active query bool false "Фильтр по активности"
// @Param search query string false "Поиск по названию, slug и email"
// @Success 200 {object} map[string][]models.Organization "organizations"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations [get]
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	active, err := queryBool(r, "active")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	search := r.URL.Query().Get("search")

	var orgs []models.Organization
	if search != "" && active == nil {
		orgs, err = h.organizationService.SearchOrganizations(r.Context(), userID, search)
	} else {
		orgs, err = h.organizationService.ListOrganizations(r.Context(), userID, models.OrganizationFilter{Active: active, Search: search})
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organizations": orgs})
}

// Count godoc
// @Summary Число активных организаций
// @Tags organizations
// @Produce json
// @Success 200 {object} map[string]int "count"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/count [get]
func (h *OrganizationHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	count, err := h.organizationService.CountActiveOrganizations(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"count": count})
}

// SlugAvailability godoc
// @Summary Проверить slug организации
// @Tags organizations
// @Produce json
// @Param slug query string true "Slug"
// @Param exclude_id query int false "ID организации, которую не учитывать"
// @Success 200 {object} models.SlugAvailability "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/slug-availability [get]
func (h *OrganizationHandler) SlugAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	excludeID, err := queryInt(r, "exclude_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.organizationService.CheckSlugAvailability(r.Context(), userID, r.URL.Query().Get("slug"), excludeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

// Get godoc
// @Summary Организация по ID
// @Tags organizations
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} map[string]models.Organization "organization"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID} [get]
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganization(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organization": org})
}

// GetBySlug godoc
// @Summary Организация по slug
// @Tags organizations
// @Produce json
// @Param slug path string true "Slug организации"
// @Success 200 {object} map[string]models.Organization "organization"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/by-slug/{slug} [get]
func (h *OrganizationHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganizationBySlug(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organization": org})
}

// Update godoc
// @Summary Обновить организацию
// @Tags organizations
// @Accept json
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param input body services.UpdateOrganizationInput true "Изменяемые поля"
// @Success 200 {object} map[string]models.Organization "organization"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 409 {object} map[string]string "Slug уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /organizations/{organizationID} [patch]
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	var input services.UpdateOrganizationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	org, err := h.organizationService.UpdateOrganization(r.Context(), userID, orgID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organization": org})
}

// Activate godoc
// @Summary Активировать организацию
// @Tags organizations
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/activate [post]
func (h *OrganizationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate godoc
// @Summary Деактивировать организацию
// @Tags organizations
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/deactivate [post]
func (h *OrganizationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *OrganizationHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	if err := h.organizationService.SetOrganizationActive(r.Context(), userID, orgID, active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete godoc
// @Summary Удалить организацию
// @Description Только для superadmin.
// @Tags organizations
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID} [delete]
func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	if err := h.organizationService.DeleteOrganization(r.Context(), userID, orgID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo принимает multipart/form-data с файлом в поле "logo".
// @Summary Загрузить логотип
// @Tags organizations
// @Accept multipart/form-data
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param logo formData file true "Изображение до 5 МБ"
// @Success 200 {object} map[string]models.Organization "organization"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/logo [put]
func (h *OrganizationHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	org, err := h.organizationService.UploadLogo(r.Context(), userID, orgID, header.Filename, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organization": org})
}
