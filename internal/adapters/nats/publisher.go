package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lootaura/lootaura/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
// Admitted lane commits fan out on search.commit.<lane>.<session>, which
// the WebSocket relay subscribes to.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "SEARCH_COMMITS",
		Subjects:  []string{"search.commit.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    10 * time.Minute,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishCommit publishes one admitted commit for a session's lane.
func (p *Publisher) PublishCommit(ctx context.Context, sessionID string, lane domain.Lane, commit domain.Commit) error {
	data, err := json.Marshal(commit)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("search.commit.%s.%s", lane, sessionID)
	_, err = p.js.Publish(subject, data)
	return err
}

// Conn exposes the underlying connection for plain subscribers.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
