// Package session persists wizard states in Redis, keyed by an opaque
// session id issued to the browser. States expire after a day of
// inactivity; an expired or missing session reads back as a fresh state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"doorquote/internal/wizard"
)

const stateTTL = 24 * time.Hour

type Store struct {
	client *redis.Client
}

// New creates a session store over its own Redis connection.
func New(addr, password string, db int) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     100,
			MinIdleConns: 10,
		}),
	}
}

// Close closes the Redis connection.
func (s *Store) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

// Get loads the wizard state for the session. Missing or expired
// sessions return a fresh initial state, not an error.
func (s *Store) Get(ctx context.Context, sessionID string) (wizard.State, error) {
	data, err := s.client.Get(ctx, buildStateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return wizard.NewState(), nil
	}
	if err != nil {
		return wizard.State{}, fmt.Errorf("get session state: %w", err)
	}

	var state wizard.State
	if err := json.Unmarshal(data, &state); err != nil {
		return wizard.State{}, fmt.Errorf("unmarshal session state: %w", err)
	}
	return state, nil
}

// Save writes the state back and renews the session TTL.
func (s *Store) Save(ctx context.Context, sessionID string, state wizard.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	return s.client.Set(ctx, buildStateKey(sessionID), data, stateTTL).Err()
}

// Clear drops the session state.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, buildStateKey(sessionID)).Err()
}

func buildStateKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
