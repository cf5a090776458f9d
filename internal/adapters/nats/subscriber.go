package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStreams(js); err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeExportRequests consumes queued export requests. A request that
// cannot be decoded is terminated rather than redelivered.
func (s *Subscriber) SubscribeExportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ExportRequest) error) error {
	sub, err := s.js.Subscribe(SubjectExportRequested, func(msg *nats.Msg) {
		var req domain.ExportRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Warn("drop undecodable export request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &req); err != nil {
			_ = msg.NakWithDelay(5 * time.Second)
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("export-worker"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.AckWait(2*time.Minute),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeExportEvents relays completion and failure events as raw
// payloads, e.g. to WebSocket clients. Delivery is at-most-once.
func (s *Subscriber) SubscribeExportEvents(ctx context.Context, handler func(ctx context.Context, subject string, data []byte) error) error {
	sub, err := s.conn.Subscribe(SubjectExportEvents, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Subject, msg.Data); err != nil {
			slog.Debug("export event handler failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
