package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geoexport/internal/adapters/nats"
	"github.com/samirrijal/geoexport/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to event kinds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "completed" | "failed" | "all" (default: all)
}

// wsEvent wraps a relayed broker message.
type wsEvent struct {
	Subject string          `json:"subject"`
	Event   json.RawMessage `json:"event"`
}

// channelSubject maps a channel name to the client's NATS subject.
func channelSubject(channel, clientID string) (string, bool) {
	switch channel {
	case "", "all":
		return natsadapter.ClientEventsSubject(clientID), true
	case "completed":
		return natsadapter.CompletedSubject(clientID), true
	case "failed":
		return natsadapter.FailedSubject(clientID), true
	}
	return "", false
}

// WebSocketHandler returns a handler that relays the calling client's
// export completion and failure events from NATS. A connection starts
// subscribed to all of them; clients send
// {"action":"unsubscribe","channel":"failed"} to narrow it.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		cid, _ := c.Locals(clientIDLocal).(string)
		log := slog.Default().With("client_id", cid, "remote", c.RemoteAddr().String())

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(subject string) error {
			s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
				_ = writeJSON(wsEvent{Subject: msg.Subject, Event: json.RawMessage(msg.Data)})
			})
			if err != nil {
				return err
			}
			subs[subject] = s
			return nil
		}

		defaultSubject, _ := channelSubject("all", cid)
		if err := subscribe(defaultSubject); err != nil {
			log.Error("ws default subscribe failed", "error", err)
			return
		}

		// Keep-alive ping
		done := make(chan struct{})
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

			subject, ok := channelSubject(m.Channel, cid)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				if err := subscribe(subject); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
