package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/middleware"
	"habitTrackerAPI/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub  *services.LiveHub
	auth *middleware.Authenticator
}

func NewLiveHandler(hub *services.LiveHub, auth *middleware.Authenticator) *LiveHandler {
	return &LiveHandler{
		hub:  hub,
		auth: auth,
	}
}

// Browsers cannot set headers on a websocket handshake, so the token may come
// as ?token= instead of the Authorization header.
func liveToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// GET /api/v1/live?token=
func (h *LiveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := liveToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	ctx, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	userID, _ := middleware.GetUserID(ctx)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("could not upgrade connection", "error", err)
		return
	}

	client := h.hub.Register(conn, userID)

	go client.WritePump()
	go client.ReadPump()
}
