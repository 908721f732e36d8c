package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/menupick/menupick/internal/domain"
)

// JobQueueName is the queue external producers push serialized jobs onto.
const JobQueueName = "menu_queue"

// ErrStatusTransition is returned when a status write would move a job
// record backwards or to an illegal value.
var ErrStatusTransition = errors.New("illegal status transition")

// Per-job key builders. Every record field is namespaced by the job ID so
// concurrent jobs never contend on the same keys.

func QuestionsKey(jobID string) string   { return "questions:" + jobID }
func MenuTextKey(jobID string) string    { return "menu_text:" + jobID }
func StatusKey(jobID string) string      { return "status:" + jobID }
func PreferencesKey(jobID string) string { return "user_preferences:" + jobID }
func ResultKey(jobID string) string      { return "result:" + jobID }

// RecordStore exposes the per-job record fields as typed accessors over a
// KV implementation. The pipeline is the only writer of every field except
// user preferences, which the intake API writes exactly once.
type RecordStore struct {
	kv KV
}

// NewRecordStore creates a RecordStore backed by the given KV.
func NewRecordStore(kv KV) *RecordStore {
	return &RecordStore{kv: kv}
}

// SetMenuText persists the concatenated plain-text digest for a job.
func (s *RecordStore) SetMenuText(ctx context.Context, jobID, text string) error {
	return s.kv.Set(ctx, MenuTextKey(jobID), text)
}

// GetMenuText retrieves the digest text for a job.
// Returns ErrNotFound if the digest has not been written.
func (s *RecordStore) GetMenuText(ctx context.Context, jobID string) (string, error) {
	return s.kv.Get(ctx, MenuTextKey(jobID))
}

// SetQuestions persists the serialized question set for a job.
func (s *RecordStore) SetQuestions(ctx context.Context, jobID string, questions domain.QuestionSet) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	return s.kv.Set(ctx, QuestionsKey(jobID), string(data))
}

// GetQuestions retrieves and decodes the question set for a job.
// Returns ErrNotFound if no questions have been written.
func (s *RecordStore) GetQuestions(ctx context.Context, jobID string) (domain.QuestionSet, error) {
	raw, err := s.kv.Get(ctx, QuestionsKey(jobID))
	if err != nil {
		return nil, err
	}

	var questions domain.QuestionSet
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode stored questions: %w", err)
	}
	return questions, nil
}

// GetQuestionsRaw retrieves the stored question JSON without decoding it.
// The read API serves this verbatim.
func (s *RecordStore) GetQuestionsRaw(ctx context.Context, jobID string) (string, error) {
	return s.kv.Get(ctx, QuestionsKey(jobID))
}

// SetStatus advances the job's status. Transitions are strictly forward
// (absent -> questions_ready -> completed | abandoned); a write that would
// revert or skip a stage returns ErrStatusTransition. The pipeline is the
// sole status writer, so a read-then-write check is sufficient here.
func (s *RecordStore) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	current, err := s.GetStatus(ctx, jobID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if !domain.CanTransition(current, status) {
		return fmt.Errorf("%w: %q -> %q", ErrStatusTransition, current, status)
	}

	return s.kv.Set(ctx, StatusKey(jobID), string(status))
}

// GetStatus retrieves the job's current status.
// Returns ErrNotFound (and an empty status) before the first status write.
func (s *RecordStore) GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	raw, err := s.kv.Get(ctx, StatusKey(jobID))
	if err != nil {
		return "", err
	}
	return domain.JobStatus(raw), nil
}

// SetPreferences stores the patron's answers exactly once.
// Returns ErrAlreadySet if preferences were already submitted for this job;
// the first submission wins.
func (s *RecordStore) SetPreferences(ctx context.Context, jobID string, prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return s.kv.SetOnce(ctx, PreferencesKey(jobID), string(data))
}

// GetPreferences retrieves and decodes the patron's answers.
// Returns ErrNotFound while the external actor has not yet written them;
// the pipeline polls on exactly that condition.
func (s *RecordStore) GetPreferences(ctx context.Context, jobID string) (domain.Preferences, error) {
	raw, err := s.kv.Get(ctx, PreferencesKey(jobID))
	if err != nil {
		return nil, err
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode stored preferences: %w", err)
	}
	return prefs, nil
}

// SetResult persists the serialized recommendation set for a job.
func (s *RecordStore) SetResult(ctx context.Context, jobID string, result domain.RecommendationSet) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return s.kv.Set(ctx, ResultKey(jobID), string(data))
}

// GetResultRaw retrieves the stored result JSON without decoding it.
func (s *RecordStore) GetResultRaw(ctx context.Context, jobID string) (string, error) {
	return s.kv.Get(ctx, ResultKey(jobID))
}
