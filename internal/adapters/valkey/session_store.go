package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// SessionStore implements ports.SessionStorage using Valkey
// (Redis-compatible). Every key written gets the configured TTL so
// abandoned sessions age out on their own.
type SessionStore struct {
	client valkey.Client
	ttl    time.Duration
}

// New creates a new Valkey session store. ttlSeconds <= 0 means no expiry.
func New(addr string, ttlSeconds int) (*SessionStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &SessionStore{client: client, ttl: time.Duration(ttlSeconds) * time.Second}, nil
}

// Get retrieves a value by key. A missing key surfaces as an error the
// caller treats as a miss.
func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if cmd.Error() != nil {
		return "", cmd.Error()
	}
	return cmd.ToString()
}

// Set stores a value under key with the store's TTL.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	b := s.client.B().Set().Key(key).Value(value)
	if s.ttl > 0 {
		return s.client.Do(ctx, b.Ex(s.ttl).Build()).Error()
	}
	return s.client.Do(ctx, b.Build()).Error()
}

// Remove deletes a key.
func (s *SessionStore) Remove(ctx context.Context, key string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error()
}

// Close releases the client.
func (s *SessionStore) Close() {
	s.client.Close()
}
