package http

import (
	"net/http"
	"time"

	"psylink/internal/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type EventsHandler struct {
	Hub    *events.Hub
	Logger *zap.Logger
}

// ServeHTTP streams settlement events to an admin dashboard client
// until it disconnects.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, cancel := h.Hub.Subscribe()
	defer cancel()

	// Drain reads so close frames from the client are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
