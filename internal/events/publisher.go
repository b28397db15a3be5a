// Package events publishes household events to NATS JetStream for external
// integrations (dashboards, automations). Publishing is optional and
// fire-and-forget: a failed publish never affects command handling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/homebot/internal/logfields"
)

// FeedingRecorded is emitted after a feeding event is durably appended.
type FeedingRecorded struct {
	Pet        string    `json:"pet"`
	Kind       string    `json:"kind"`
	At         time.Time `json:"at"`
	FeederID   int64     `json:"feeder_id"`
	FeederName string    `json:"feeder_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// PresenceChanged is emitted when a resident toggles home/away.
type PresenceChanged struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits household events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishFeeding(event FeedingRecorded)
	PublishPresence(event PresenceChanged)
	Close() error
}

// NoopPublisher is used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishFeeding(FeedingRecorded)  {}
func (NoopPublisher) PublishPresence(PresenceChanged) {}
func (NoopPublisher) Close() error                    { return nil }

// NATSPublisher publishes events to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and prepares a JetStream context.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{conn: conn, js: js, subject: subject}, nil
}

// PublishFeeding publishes a feeding event. Errors are logged, not returned.
func (p *NATSPublisher) PublishFeeding(event FeedingRecorded) {
	event.Timestamp = time.Now().UTC()
	p.publish(p.subject+".feeding", event)
}

// PublishPresence publishes a presence change. Errors are logged, not returned.
func (p *NATSPublisher) PublishPresence(event PresenceChanged) {
	event.Timestamp = time.Now().UTC()
	p.publish(p.subject+".presence", event)
}

func (p *NATSPublisher) publish(subject string, event any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", logfields.Error(err))
		return
	}
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		slog.Error("Failed to publish event", slog.String("subject", subject), logfields.Error(err))
		return
	}
	slog.Debug("Published event", slog.String("subject", subject))
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
