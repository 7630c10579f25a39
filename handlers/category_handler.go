package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/matchsquad/models"
	"github.com/Dosada05/matchsquad/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(cs services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

type copyTemplateRequest struct {
	TemplateSlug string `json:"template_slug"`
}

// Create godoc
// @Summary Создать категорию
// @Tags categories
// @Accept json
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param input body services.CategoryInput true "Данные категории"
// @Success 201 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 409 {object} map[string]string "Slug уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	var input services.CategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.CreateCategory(r.Context(), userID, orgID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"category": category})
}

// CreateFromTemplate godoc
// @Summary Создать категорию из шаблона
// @Description При занятом slug добавляется суффикс -1, -2 и так далее.
// @Tags categories
// @Accept json
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param input body handlers.copyTemplateRequest true "Slug шаблона"
// @Success 201 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories/from-template [post]
func (h *CategoryHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	var input copyTemplateRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.CopyTemplate(r.Context(), userID, orgID, input.TemplateSlug)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"category": category})
}

// List: фильтры ?modality=, ?active=, ?level=, ?search=.
// @Summary Категории организации
// @Tags categories
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param modality query string false "singles, dobles_masculino, dobles_femenino, dobles_mixto"
// @Param active query bool false "Фильтр по активности"
// @Param level query string false "principiante, intermedio, avanzado, pro"
// @Param search query string false "Поиск по названию и slug"
// @Success 200 {object} map[string][]models.Category "categories"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.CategoryFilter{Search: q.Get("search")}
	if v := q.Get("modality"); v != "" {
		m := models.Modality(v)
		filter.Modality = &m
	}
	if v := q.Get("level"); v != "" {
		l := models.SkillLevel(v)
		filter.Level = &l
	}
	active, err := queryBool(r, "active")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.IsActive = active

	categories, err := h.categoryService.ListCategories(r.Context(), userID, orgID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"categories": categories})
}

// Stats godoc
// @Summary Статистика категорий
// @Tags categories
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} models.CategoryStats "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories/stats [get]
func (h *CategoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	stats, err := h.categoryService.CategoryStats(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stats)
}

// CountActive godoc
// @Summary Число активных категорий
// @Tags categories
// @Produce json
// @Param organizationID path int true "ID организации"
// @Success 200 {object} map[string]int "count"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories/count [get]
func (h *CategoryHandler) CountActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	count, err := h.categoryService.CountActiveCategories(r.Context(), userID, orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"count": count})
}

// SlugAvailability godoc
// @Summary Проверить slug категории
// @Tags categories
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param slug query string true "Slug"
// @Param exclude_id query int false "ID категории, которую не учитывать"
// @Success 200 {object} models.SlugAvailability "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories/slug-availability [get]
func (h *CategoryHandler) SlugAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	excludeID, err := queryInt(r, "exclude_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.categoryService.CheckSlugAvailability(r.Context(), userID, orgID, r.URL.Query().Get("slug"), excludeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

// GetBySlug godoc
// @Summary Категория по slug
// @Tags categories
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param slug path string true "Slug категории"
// @Success 200 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /organizations/{organizationID}/categories/by-slug/{slug} [get]
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategoryBySlug(r.Context(), userID, orgID, chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": category})
}

// Get godoc
// @Summary Категория по ID
// @Tags categories
// @Produce json
// @Param categoryID path int true "ID категории"
// @Success 200 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /categories/{categoryID} [get]
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(r.Context(), userID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": category})
}

// Update godoc
// @Summary Обновить категорию
// @Description is_active=false переименовывает slug в <slug>-discontinuada, is_active=true возвращает исходный.
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryID path int true "ID категории"
// @Param input body services.UpdateCategoryInput true "Изменяемые поля"
// @Success 200 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Failure 409 {object} map[string]string "Slug уже занят"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /categories/{categoryID} [patch]
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	var input services.UpdateCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(r.Context(), userID, categoryID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": category})
}

// Deactivate godoc
// @Summary Снять категорию с использования
// @Tags categories
// @Produce json
// @Param categoryID path int true "ID категории"
// @Success 200 {object} map[string]models.Category "category"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /categories/{categoryID}/deactivate [post]
func (h *CategoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := h.categoryService.DeactivateCategory(r.Context(), userID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"category": category})
}

// Delete godoc
// @Summary Удалить категорию
// @Tags categories
// @Produce json
// @Param categoryID path int true "ID категории"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /categories/{categoryID} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Usage godoc
// @Summary Используется ли категория
// @Tags categories
// @Produce json
// @Param categoryID path int true "ID категории"
// @Success 200 {object} models.CategoryUsage "OK"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Не найдено"
// @Security BearerAuth
// @Router /categories/{categoryID}/usage [get]
func (h *CategoryHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	usage, err := h.categoryService.CategoryUsage(r.Context(), userID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, usage)
}

// Templates godoc
// @Summary Системные шаблоны категорий
// @Tags categories
// @Produce json
// @Success 200 {object} map[string][]models.CategoryTemplate "templates"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Security BearerAuth
// @Router /category-templates [get]
func (h *CategoryHandler) Templates(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{"templates": h.categoryService.Templates()})
}
