package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/matchsquad/middleware"
	"github.com/Dosada05/matchsquad/realtime"
	"github.com/Dosada05/matchsquad/services"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	guard    services.AccessGuard
	upgrader websocket.Upgrader
}

// NewWebSocketHandler: пустой allowedOrigins разрешает любой Origin (разработка).
func NewWebSocketHandler(hub *realtime.Hub, guard services.AccessGuard, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:   hub,
		guard: guard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWs подписывает клиента на события организации: /ws/organizations/{organizationID}.
// @Summary Подписка на события организации
// @Description Соединение WebSocket. События: INVITATION_CREATED, INVITATION_CANCELLED, INVITATION_ACCEPTED, MEMBER_REMOVED, CATEGORY_CHANGED, ORGANIZATION_UPDATED.
// @Tags realtime
// @Produce json
// @Param organizationID path int true "ID организации"
// @Param token query string false "JWT, если нельзя передать заголовок"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /ws/organizations/{organizationID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orgID, ok := pathID(w, r, "organizationID")
	if !ok {
		return
	}
	if _, err := h.guard.AuthorizeOrganization(r.Context(), userID, orgID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет HTTP-ошибку
		slog.Warn("websocket upgrade failed", slog.Int("organization_id", orgID), slog.Any("error", err))
		return
	}

	role, _ := middleware.GetUserRoleFromContext(r.Context())
	slog.Info("websocket connected",
		slog.Int("organization_id", orgID),
		slog.Int("user_id", userID),
		slog.String("token_role", string(role)),
	)

	client := realtime.NewClient(h.hub, conn, realtime.RoomName(orgID))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
