package store

import (
	"context"
	"errors"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested key does not exist in the store.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadySet is returned by SetOnce when the key already holds a value.
	ErrAlreadySet = errors.New("key already set")

	// ErrQueueFull is returned when a push would exceed the queue's capacity.
	ErrQueueFull = errors.New("queue is full")
)

// KV is the whole-value get/set surface of the shared store. Values are
// strings: serialized structured data or plain text.
// Version: 1.0
type KV interface {
	// Get retrieves the value for key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// SetOnce stores value under key only if the key is currently unset.
	// Returns ErrAlreadySet if a value is already present.
	SetOnce(ctx context.Context, key, value string) error
}

// Queue is a named FIFO queue shared with external producers.
// Version: 1.0
type Queue interface {
	// Push appends payload to the tail of the named queue.
	Push(ctx context.Context, queue string, payload []byte) error

	// BPop removes and returns the head of the named queue, blocking
	// indefinitely until an item is available or ctx is cancelled.
	BPop(ctx context.Context, queue string) ([]byte, error)
}
