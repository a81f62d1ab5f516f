// Package in_ws bridges the subscription hub onto WebSocket viewers.
package in_ws

import (
	"errors"
	"net/http"
	"time"

	"bustracker/internal/shared/logger"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/broadcast"
	"bustracker/internal/tracker/domain"

	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// viewers connect from arbitrary origins; the stream is public
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler upgrades viewer connections and pumps hub envelopes to
// them until they disconnect.
type StreamHandler struct {
	hub              *broadcast.Hub
	locationRepo     out.LocationRepository
	defaultVehicleID string
	log              *logger.Logger
}

func NewStreamHandler(hub *broadcast.Hub, locationRepo out.LocationRepository, defaultVehicleID string, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		hub:              hub,
		locationRepo:     locationRepo,
		defaultVehicleID: defaultVehicleID,
		log:              log,
	}
}

// ServeWS handles GET /ws/location.
func (h *StreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(logger.Entry{Action: "ws_upgrade_failed", Message: err.Error()})
		return
	}

	sub, err := h.hub.Subscribe()
	if err != nil {
		code := websocket.CloseTryAgainLater
		if errors.Is(err, broadcast.ErrShutdown) {
			code = websocket.CloseGoingAway
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, err.Error()), time.Now().Add(writeWait))
		_ = conn.Close()
		h.log.Warn(logger.Entry{Action: "ws_subscribe_refused", Message: err.Error()})
		return
	}

	// Send the most recent stored fix so a new viewer can center the map
	// immediately rather than wait for the next live update.
	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		vehicleID = h.defaultVehicleID
	}
	if latest, err := h.locationRepo.FindLatest(r.Context(), vehicleID); err == nil && latest != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(domain.NewEnvelope(*latest))
	}

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// writePump drains the subscription onto the socket and keeps the
// connection alive with pings. Exits when the subscriber is dropped or
// the socket fails.
func (h *StreamHandler) writePump(conn *websocket.Conn, sub *broadcast.Subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case env := <-sub.Updates():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				h.hub.Unsubscribe(sub.ID())
				return
			}

		case <-sub.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.hub.Unsubscribe(sub.ID())
				return
			}
		}
	}
}

// readPump discards inbound frames (viewers only send keepalives) and
// deregisters the subscriber when the peer goes away.
func (h *StreamHandler) readPump(conn *websocket.Conn, sub *broadcast.Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub.ID())
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn(logger.Entry{Action: "ws_read_error", Message: err.Error()})
			}
			return
		}
	}
}
