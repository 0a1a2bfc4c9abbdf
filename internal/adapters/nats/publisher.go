package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

const (
	// StreamRecordChanges holds every job/event mutation for a day.
	StreamRecordChanges = "RECORD_CHANGES"
	subjectPrefix       = "crew.records"
)

// Subject returns the subject a change is published on: crew.records.<kind>.<op>.
func Subject(change domain.RecordChange) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, change.Kind, change.Op)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the record-change stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamRecordChanges,
		Subjects:  []string{subjectPrefix + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRecordChange publishes change and waits for the stream ack.
func (p *Publisher) PublishRecordChange(ctx context.Context, change domain.RecordChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(Subject(change), data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", Subject(change), err)
	}
	metrics.RecordChanges.WithLabelValues(string(change.Kind), string(change.Op)).Inc()
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

func connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
