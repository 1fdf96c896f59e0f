package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/clubarena/championship-system/notifications"
	"github.com/clubarena/championship-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced by the router middleware.
		return true
	},
}

// WebSocketHandler subscribes clients to a championship's event room.
type WebSocketHandler struct {
	hub    *notifications.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *notifications.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Subscribe upgrades the connection and streams every event of the
// championship: scheduling confirmations, confirmed results, disputes, stage
// advances and the final champion.
func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	championshipID, err := idParam(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &notifications.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: services.ChampionshipRoom(championshipID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
