package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mob-esports/esports-api/brackets"
	"github.com/mob-esports/esports-api/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin; CORS policy is
	// enforced at the router level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub       *brackets.Hub
	jwtSecret []byte
	logger    *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, jwtSecret string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// TournamentRoom serves the public bracket event stream for a tournament.
func (h *WebSocketHandler) TournamentRoom(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	h.serve(w, r, brackets.TournamentRoom(tournamentID))
}

// NotificationRoom serves the caller's private notification stream. Browser
// WebSocket clients cannot set headers, so the token travels as a query
// parameter.
func (h *WebSocketHandler) NotificationRoom(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		unauthorizedResponse(w, errors.New("missing token"))
		return
	}
	principal, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		unauthorizedResponse(w, err)
		return
	}
	h.serve(w, r, brackets.UserRoom(principal.ID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "room", room, "error", err)
		return
	}

	client := brackets.NewClient(h.hub, conn, room)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
