package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JobStatus represents the externally visible processing state of a job.
type JobStatus string

// Possible job status values. A job record has no status key at all until
// the pipeline publishes its questions, so "absent" is represented by the
// store's not-found error rather than a status value.
const (
	JobStatusQuestionsReady JobStatus = "questions_ready"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusAbandoned      JobStatus = "abandoned"
)

// Common validation errors for Job
var (
	ErrEmptyJobID    = errors.New("job ID cannot be empty")
	ErrNoJobFiles    = errors.New("job must reference at least one file")
	ErrEmptyJobFile  = errors.New("job file path cannot be empty")
	ErrInvalidStatus = errors.New("invalid job status")
)

// Job is the unit of work popped off the shared queue. The producer supplies
// the ID, which namespaces every key the pipeline writes for this job. Files
// are consumed in order: read once, digested, then deleted.
type Job struct {
	ID    string   `json:"id"`
	Files []string `json:"files"`
}

// ParseJob decodes a queued payload into a Job and validates it.
// Returns an error for payloads that are not JSON or fail validation;
// the dispatcher treats either as a skippable malformed payload.
func ParseJob(payload []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job payload: %w", err)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return &job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}

	if len(j.Files) == 0 {
		return ErrNoJobFiles
	}

	for _, f := range j.Files {
		if f == "" {
			return ErrEmptyJobFile
		}
	}

	return nil
}

// statusRank orders statuses for monotonicity checks. Completed and
// abandoned are both terminal; neither follows the other.
func statusRank(s JobStatus) int {
	switch s {
	case JobStatusQuestionsReady:
		return 1
	case JobStatusCompleted, JobStatusAbandoned:
		return 2
	default:
		return 0
	}
}

// IsValidJobStatus reports whether the given status is one of the legal
// job status values.
func IsValidJobStatus(s JobStatus) bool {
	return statusRank(s) > 0
}

// CanTransition reports whether a job status may move from to next.
// Transitions are strictly forward: absent (empty) -> questions_ready ->
// completed | abandoned. A status never reverts and terminals never change.
func CanTransition(from, next JobStatus) bool {
	if !IsValidJobStatus(next) {
		return false
	}

	if from == "" {
		return next == JobStatusQuestionsReady
	}

	if !IsValidJobStatus(from) {
		return false
	}

	return statusRank(next) == statusRank(from)+1
}
