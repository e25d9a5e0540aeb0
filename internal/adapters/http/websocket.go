package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/runmate-app/runmate/internal/core/domain"
	"github.com/runmate-app/runmate/internal/pkg/metrics"
)

// wsMessage is sent from a client to narrow or widen the live feed.
type wsMessage struct {
	Action string         `json:"action"` // "watch" | "unwatch"
	Box    *domain.Bounds `json:"box,omitempty"`
}

// WebSocketHandler relays run-created events from NATS to connected map
// clients. A client may send {"action":"watch","box":{...}} to only receive
// runs inside its current viewport; "unwatch" restores the firehose.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		var box *domain.Bounds

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		inBox := func(run domain.Run) bool {
			mu.Lock()
			b := box
			mu.Unlock()
			if b == nil {
				return true
			}
			return run.Location.Lat >= b.LatMin && run.Location.Lat <= b.LatMax &&
				run.Location.Lng >= b.LngMin && run.Location.Lng <= b.LngMax
		}

		sub, err := nc.Subscribe("runs.created.>", func(msg *nats.Msg) {
			var run domain.Run
			if err := json.Unmarshal(msg.Data, &run); err != nil {
				return
			}
			if !inBox(run) {
				return
			}
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Warn("ws subscribe error", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "watch":
				if m.Box == nil {
					_ = writeJSON(map[string]string{"error": "watch requires a box"})
					continue
				}
				mu.Lock()
				box = m.Box
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "watching box"})

			case "unwatch":
				mu.Lock()
				box = nil
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "watching all"})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
