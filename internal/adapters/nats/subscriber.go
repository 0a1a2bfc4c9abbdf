package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRecordChanges delivers every change published from now on. The
// consumer is ephemeral so each API instance sees every change.
func (s *Subscriber) SubscribeRecordChanges(ctx context.Context, handler func(ctx context.Context, change domain.RecordChange) error) error {
	sub, err := s.js.Subscribe(subjectPrefix+".>", func(msg *nats.Msg) {
		change, err := decodeChange(msg.Data)
		if err != nil {
			slog.Warn("dropping malformed record change", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, change); err != nil {
			slog.Warn("record change handler failed", "kind", change.Kind, "id", change.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe record changes: %w", err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

func decodeChange(data []byte) (domain.RecordChange, error) {
	var change domain.RecordChange
	if err := json.Unmarshal(data, &change); err != nil {
		return change, err
	}
	if _, ok := domain.ParseFeatureKind(string(change.Kind)); !ok || change.ID == "" {
		return change, fmt.Errorf("invalid record change %+v", change)
	}
	return change, nil
}

// IsConnected reports whether the underlying connection is up.
func (s *Subscriber) IsConnected() bool {
	return s.conn.IsConnected()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
