// Package ws serves the dashboard's live event feed over WebSocket,
// grounded on the teacher's internal/handler/ws/delivery.go.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/odin-fire/odin-go/internal/domain/registry"
)

// Handler upgrades incoming requests to WebSocket and streams every event
// the registry routes to the requested subject.
type Handler struct {
	logger   *slog.Logger
	hub      registry.Hubber
	upgrader websocket.Upgrader
}

func NewHandler(logger *slog.Logger, hub registry.Hubber) *Handler {
	return &Handler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and attaches a session to the subject
// named by the "subject" query parameter (an ICAO code, tile ID,
// device ID, or dashboard client ID).
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subject")
	if subjectID == "" {
		http.Error(w, "missing subject parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := model.NewConnector(r.Context(), subjectID, model.ConnectMetadata{
		Transport: "ws",
		RemoteIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}, 128)
	if err := h.hub.Register(subjectID, session); err != nil {
		h.logger.Error("ws registration failed", "subject", subjectID, "error", err)
		return
	}
	defer h.hub.Unregister(subjectID, session.GetID())

	h.logger.Info("ws opened", "subject", subjectID, "conn_id", session.GetID())

	go h.readPump(conn, subjectID, session.GetID())

	for ev := range session.Recv() {
		data, err := marshalEvent(ev)
		if err != nil {
			h.logger.Error("ws marshal failed", "error", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("ws send failed", "error", err)
			return
		}
	}
}

// readPump reads and discards client frames so that gorilla/websocket
// processes control frames (pings/pongs, or an explicit close); no read
// deadline is set, and this server has no inbound client commands to act on.
func (h *Handler) readPump(conn *websocket.Conn, subjectID string, connID uuid.UUID) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("ws read pump closed", "subject", subjectID, "conn_id", connID)
			return
		}
	}
}
