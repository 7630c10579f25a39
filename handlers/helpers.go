package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/matchsquad/middleware"
	"github.com/Dosada05/matchsquad/services"
)

type jsonResponse map[string]interface{}

const maxJSONBytes = 1_048_576

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxJSONBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxJSONBytes)
		default:
			return err
		}
	}

	if err = dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := writeJSON(w, status, data, nil); err != nil {
		slog.Error("failed to write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	respond(w, r, status, jsonResponse{"error": message})
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		errorResponse(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInsufficientPermission):
		errorResponse(w, r, http.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrTemplateNotFound):
		errorResponse(w, r, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrPendingInvitationExists),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrCategoryAlreadyInactive),
		errors.Is(err, services.ErrCategoryInUse),
		errors.Is(err, services.ErrOrganizationHasCategory),
		errors.Is(err, services.ErrOrganizationHasInvites):
		errorResponse(w, r, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidSlug),
		errors.Is(err, services.ErrInvalidAgeRange),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidModality),
		errors.Is(err, services.ErrInvalidLevel),
		errors.Is(err, services.ErrInvalidImageType):
		errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, services.ErrInvitationExpired):
		errorResponse(w, r, http.StatusGone, err.Error())
	case errors.Is(err, services.ErrInvitationAlreadyUsed),
		errors.Is(err, services.ErrInvitationCancelled),
		errors.Is(err, services.ErrInvitationWrongEmail),
		errors.Is(err, services.ErrInvitationNotPending),
		errors.Is(err, services.ErrOTPInvalid),
		errors.Is(err, services.ErrOTPTooManyAttempts):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrEmailDeliveryFailed):
		slog.Warn("email delivery failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		errorResponse(w, r, http.StatusBadGateway, services.ErrEmailDeliveryFailed.Error())
	case errors.Is(err, services.ErrEmailNotConfigured),
		errors.Is(err, services.ErrStorageNotConfigured):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// queryInt читает необязательный целый параметр запроса; пустое значение дает 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, v)
	}
	return &b, nil
}

// currentUser возвращает id вызывающего; при ошибке ответ уже записан.
func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, services.ErrNotAuthenticated.Error())
		return 0, false
	}
	return id, true
}

// pathID разбирает числовой параметр пути; при ошибке ответ уже записан.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := getIDFromURL(r, name)
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, false
	}
	return id, true
}
