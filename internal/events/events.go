package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of pipeline event.
type EventType string

// Pipeline event types.
const (
	// EventExtractionFailed is emitted when a model reply contained no
	// usable fenced JSON block. The event carries the original text.
	EventExtractionFailed EventType = "extraction_failed"

	// EventCompletionDegraded is emitted when a completion call failed and
	// the pipeline substituted an inline error string instead of aborting.
	EventCompletionDegraded EventType = "completion_degraded"

	// EventJobAbandoned is emitted when a job's wait for user preferences
	// timed out or was cancelled and the job was marked abandoned.
	EventJobAbandoned EventType = "job_abandoned"
)

// PipelineEvent describes a degradation observed while processing a job.
type PipelineEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type indicates what degraded.
	Type EventType `json:"type"`

	// JobID is the job being processed when the event occurred.
	JobID string `json:"job_id"`

	// Stage names the pipeline stage that emitted the event.
	Stage string `json:"stage"`

	// Err is the string form of the underlying error.
	Err string `json:"error"`

	// OriginalText carries the raw model output for extraction failures,
	// so the full reply is recoverable from logs. Empty otherwise.
	OriginalText string `json:"original_text,omitempty"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewPipelineEvent creates a PipelineEvent for the given job and stage.
func NewPipelineEvent(eventType EventType, jobID, stage string, err error) *PipelineEvent {
	event := &PipelineEvent{
		ID:        uuid.New(),
		Type:      eventType,
		JobID:     jobID,
		Stage:     stage,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		event.Err = err.Error()
	}
	return event
}

// Handler is implemented by components that want to observe pipeline events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *PipelineEvent) error
}

// Emitter is implemented by components that publish pipeline events.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *PipelineEvent) error
}
