// Package redis implements the store contracts over a Redis server: plain
// GET/SET for record fields, SETNX for the write-once preference key, and
// LPUSH/BRPOP for the shared job queue.
package redis

import (
	"context"
	"errors"
	"fmt"

	r "github.com/redis/go-redis/v9"

	"github.com/menupick/menupick/internal/config"
	"github.com/menupick/menupick/internal/store"
)

// Store implements store.KV and store.Queue over a Redis client.
type Store struct {
	rdb *r.Client
}

// New creates a Store over an existing Redis client.
func New(rdb *r.Client) *Store {
	return &Store{rdb: rdb}
}

// NewFromConfig dials Redis using the given configuration and verifies the
// connection with a PING before returning.
func NewFromConfig(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	rdb := r.NewClient(&r.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return New(rdb), nil
}

// Get retrieves the value for key.
// Returns store.ErrNotFound if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// SetOnce stores value under key only if the key is currently unset.
// Returns store.ErrAlreadySet if a value is already present.
func (s *Store) SetOnce(ctx context.Context, key, value string) error {
	ok, err := s.rdb.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx %q: %w", key, err)
	}
	if !ok {
		return store.ErrAlreadySet
	}
	return nil
}

// Push appends payload to the tail of the named queue.
func (s *Store) Push(ctx context.Context, queue string, payload []byte) error {
	if err := s.rdb.LPush(ctx, queue, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush %q: %w", queue, err)
	}
	return nil
}

// BPop removes and returns the head of the named queue, blocking
// indefinitely until an item is available or ctx is cancelled.
func (s *Store) BPop(ctx context.Context, queue string) ([]byte, error) {
	res, err := s.rdb.BRPop(ctx, 0, queue).Result()
	if err != nil {
		return nil, fmt.Errorf("redis brpop %q: %w", queue, err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("redis brpop %q: unexpected reply length %d", queue, len(res))
	}
	return []byte(res[1]), nil
}
