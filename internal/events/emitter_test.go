package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures every event it receives.
type recordingHandler struct {
	mu     sync.Mutex
	events []*PipelineEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *PipelineEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) received() []*PipelineEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*PipelineEvent(nil), h.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestNewPipelineEvent(t *testing.T) {
	t.Parallel()

	event := NewPipelineEvent(EventExtractionFailed, "j1", "generate_questions", errors.New("no block"))

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventExtractionFailed, event.Type)
	assert.Equal(t, "j1", event.JobID)
	assert.Equal(t, "generate_questions", event.Stage)
	assert.Equal(t, "no block", event.Err)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestInMemoryEmitter(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all handlers", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(testLogger())
		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := NewPipelineEvent(EventCompletionDegraded, "j1", "digest", errors.New("boom"))
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		require.Len(t, first.received(), 1)
		require.Len(t, second.received(), 1)
		assert.Equal(t, event.ID, first.received()[0].ID)
	})

	t.Run("handler error does not stop delivery", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(testLogger())
		failing := &recordingHandler{err: errors.New("handler broke")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		err := emitter.EmitEvent(context.Background(),
			NewPipelineEvent(EventJobAbandoned, "j1", "await_preferences", errors.New("timeout")))

		assert.EqualError(t, err, "handler broke")
		assert.Len(t, healthy.received(), 1)
	})

	t.Run("no handlers is not an error", func(t *testing.T) {
		t.Parallel()

		emitter := NewInMemoryEmitter(testLogger())

		err := emitter.EmitEvent(context.Background(),
			NewPipelineEvent(EventCompletionDegraded, "j1", "digest", errors.New("boom")))

		assert.NoError(t, err)
	})
}

func TestLoggingHandler(t *testing.T) {
	t.Parallel()

	handler := NewLoggingHandler(testLogger())

	event := NewPipelineEvent(EventExtractionFailed, "j1", "generate_questions", errors.New("no block"))
	event.OriginalText = "the model said something unstructured"

	assert.NoError(t, handler.HandleEvent(context.Background(), event))
}
