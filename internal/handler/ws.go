package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"unimarket/internal/service"
	"unimarket/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The frontend is served from a different origin; the token is the
	// gate, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated clients onto the live messaging
// channel. Browsers cannot set headers on a websocket handshake, so
// the token arrives as a query parameter instead of Authorization.
type WSHandler struct {
	hub      *ws.Hub
	auth     *service.AuthService
	messages *service.MessageService
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, auth *service.AuthService, messages *service.MessageService) *WSHandler {
	return &WSHandler{hub: hub, auth: auth, messages: messages}
}

// HandleConnect authenticates and upgrades the connection.
// GET /api/ws?token=...
func (h *WSHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	user, err := authenticateToken(r.Context(), h.auth, token)
	if err != nil {
		writeError(w, http.StatusForbidden, "Invalid or expired token.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		slog.Error("ws upgrade", "user_id", user.ID, "error", err)
		return
	}

	ws.NewClient(h.hub, conn, user.ID, h.messages).Start()
}
