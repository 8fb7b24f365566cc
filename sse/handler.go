package sse

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/routekit/logger"
)

// EventConnected is the first frame sent to every client.
const EventConnected = "connected"

const keepAliveInterval = 30 * time.Second

// Handler serves the event stream. The optional route query parameter
// filters events by route id glob.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		client := NewClient(uuid.NewString(), r.URL.Query().Get("route"), h.buffer)
		if !h.Register(client) {
			http.Error(w, "event stream not running", http.StatusServiceUnavailable)
			return
		}
		defer h.Unregister(client)

		// The stream outlives the server's WriteTimeout.
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			h.log.Debug("write deadline not cleared", logger.Fields("client_id", client.id, "error", err.Error()))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		hello, _ := encode(EventConnected, map[string]string{"client_id": client.id, "filter": client.filter})
		_, _ = w.Write(hello)
		flusher.Flush()

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case frame, ok := <-client.Events():
				if !ok {
					return
				}
				if _, err := w.Write(frame); err != nil {
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				_, _ = w.Write([]byte(": keepalive\n\n"))
				flusher.Flush()
			}
		}
	}
}
