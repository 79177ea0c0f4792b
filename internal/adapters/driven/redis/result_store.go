// Package redis implements the persistent warm tier for the query cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/malcha/dagu-client/internal/core/domain"
	"github.com/malcha/dagu-client/internal/core/ports/driven"
)

// Ensure ResultStore implements driven.ResultStore
var _ driven.ResultStore = (*ResultStore)(nil)

const keyPrefix = "result:"

// envelope wraps a persisted result with its original fetch time, so a
// restarted process can age it correctly.
type envelope struct {
	StoredAt time.Time            `json:"stored_at"`
	Result   *domain.SearchResult `json:"result"`
}

// ResultStore keeps serialized search results in Redis with a TTL.
type ResultStore struct {
	client *redis.Client
}

// NewResultStore creates a store around an existing client.
func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

// NewResultStoreFromURL connects from a redis:// URL and verifies the
// connection.
func NewResultStoreFromURL(ctx context.Context, rawURL string) (*ResultStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewResultStore(client), nil
}

// Save persists a result under its cache key.
func (s *ResultStore) Save(ctx context.Context, key string, result *domain.SearchResult, storedAt time.Time, ttl time.Duration) error {
	payload, err := json.Marshal(envelope{StoredAt: storedAt, Result: result})
	if err != nil {
		return fmt.Errorf("redis: encode result for %q: %w", key, err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save %q: %w", key, err)
	}
	return nil
}

// Load returns a persisted result and when it was fetched, or
// domain.ErrNotFound when the key is absent or expired.
func (s *ResultStore) Load(ctx context.Context, key string) (*domain.SearchResult, time.Time, error) {
	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: load %q: %w", key, err)
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: decode result for %q: %w", key, err)
	}
	return env.Result, env.StoredAt, nil
}

// Delete removes a persisted result. Missing keys are not an error.
func (s *ResultStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis: delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *ResultStore) Close() error {
	return s.client.Close()
}
