package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/matchsquad/handlers"
)

func newTestRouter() http.Handler {
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:         handlers.NewAuthHandler(nil),
		User:         handlers.NewUserHandler(nil),
		AdminUser:    handlers.NewAdminUserHandler(nil),
		Organization: handlers.NewOrganizationHandler(nil),
		Membership:   handlers.NewMembershipHandler(nil),
		Invitation:   handlers.NewInvitationHandler(nil),
		Category:     handlers.NewCategoryHandler(nil),
		WebSocket:    handlers.NewWebSocketHandler(nil, nil, nil),
	}, Options{JWTSecret: []byte("secret"), AllowedOrigins: []string{"http://localhost:3000"}})
	return router
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSwaggerDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var doc struct {
		Swagger string                            `json:"swagger"`
		Info    map[string]interface{}            `json:"info"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "MatchSquad API", doc.Info["title"])
	assert.Contains(t, doc.Paths["/invitations/accept"], "post")
	assert.Contains(t, doc.Paths["/organizations/{organizationID}/invitations"], "post")
	assert.Contains(t, doc.Paths["/categories/{categoryID}"], "patch")
	assert.Contains(t, doc.Paths["/auth/otp/verify"], "post")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter()
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/organizations"},
		{http.MethodPost, "/organizations/1/invitations"},
		{http.MethodPost, "/invitations/accept"},
		{http.MethodGet, "/invitations/5"},
		{http.MethodPatch, "/categories/3"},
		{http.MethodGet, "/admin/users"},
		{http.MethodGet, "/ws/organizations/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/organizations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
