package store

import (
	"context"
	"sync"
)

// defaultQueueCapacity bounds each in-memory queue's buffer. The shared
// Redis queue has no such bound; this only matters for the local fake.
const defaultQueueCapacity = 1024

// MemoryStore is an in-memory implementation of KV and Queue. It backs
// tests and local development where no Redis is available. Queues are
// buffered channels, so BPop blocks exactly like BRPOP does.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	queues map[string]chan []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		queues: make(map[string]chan []byte),
	}
}

// Get retrieves the value for key.
// Returns ErrNotFound if the key does not exist.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// SetOnce stores value under key only if the key is currently unset.
// Returns ErrAlreadySet if a value is already present.
func (m *MemoryStore) SetOnce(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; ok {
		return ErrAlreadySet
	}
	m.values[key] = value
	return nil
}

// Push appends payload to the tail of the named queue.
// Returns ErrQueueFull if the queue's buffer is exhausted.
func (m *MemoryStore) Push(ctx context.Context, queue string, payload []byte) error {
	select {
	case m.queue(queue) <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

// BPop removes and returns the head of the named queue, blocking until an
// item is available or ctx is cancelled.
func (m *MemoryStore) BPop(ctx context.Context, queue string) ([]byte, error) {
	select {
	case payload := <-m.queue(queue):
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MemoryStore) queue(name string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[name]
	if !ok {
		q = make(chan []byte, defaultQueueCapacity)
		m.queues[name] = q
	}
	return q
}
