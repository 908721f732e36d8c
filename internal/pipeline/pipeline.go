package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/menupick/menupick/internal/config"
	"github.com/menupick/menupick/internal/domain"
	"github.com/menupick/menupick/internal/events"
	"github.com/menupick/menupick/internal/extract"
	"github.com/menupick/menupick/internal/llm"
	"github.com/menupick/menupick/internal/store"
)

// Stage names used in log fields and pipeline events.
const (
	stageDigest         = "digest"
	stageQuestions      = "generate_questions"
	stageAwait          = "await_preferences"
	stageRecommendation = "generate_recommendations"
)

// Common errors
var (
	ErrNilRecordStore = errors.New("record store cannot be nil")
	ErrNilClient      = errors.New("completion client cannot be nil")
	ErrNilEmitter     = errors.New("event emitter cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")

	// ErrPreferencesTimeout is returned when a job's wait for user
	// preferences exceeded the configured bound and the job was marked
	// abandoned. The one way a job run can end without completing.
	ErrPreferencesTimeout = errors.New("timed out waiting for user preferences")
)

// Pipeline drives a single job through the four processing stages. It holds
// only injected dependencies; all per-job state lives in the Run call.
type Pipeline struct {
	records *store.RecordStore
	client  llm.CompletionClient
	emitter events.Emitter
	logger  *slog.Logger

	pollInterval       time.Duration
	preferencesTimeout time.Duration
}

// New creates a Pipeline with the given dependencies and worker settings.
func New(
	records *store.RecordStore,
	client llm.CompletionClient,
	emitter events.Emitter,
	logger *slog.Logger,
	cfg config.WorkerConfig,
) (*Pipeline, error) {
	if records == nil {
		return nil, ErrNilRecordStore
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Pipeline{
		records:            records,
		client:             client,
		emitter:            emitter,
		logger:             logger,
		pollInterval:       time.Duration(cfg.PollIntervalSeconds) * time.Second,
		preferencesTimeout: time.Duration(cfg.PreferencesTimeoutMinutes) * time.Minute,
	}, nil
}

// Run processes one job to a terminal state. Completion calls and
// extraction failures degrade inline rather than aborting, so the only
// non-completed outcomes are a store write failure or an abandoned wait
// for preferences.
func (p *Pipeline) Run(ctx context.Context, job *domain.Job) error {
	logger := p.logger.With("job_id", job.ID)
	logger.Info("processing job", "file_count", len(job.Files))

	// Stage 1: digest every menu image, in order, into one text blob.
	menuText := p.digest(ctx, logger, job)

	// Stage 2: generate questions from the digest and publish them.
	if err := p.publishQuestions(ctx, logger, job.ID, menuText); err != nil {
		return err
	}
	logger.Info("job questions ready")

	// Stage 3: block until the patron's answers appear in the store.
	prefs, err := p.awaitPreferences(ctx, logger, job.ID)
	if err != nil {
		p.abandon(ctx, logger, job.ID, err)
		return err
	}

	// Stage 4: generate recommendations and publish the terminal result.
	if err := p.publishRecommendations(ctx, logger, job.ID, menuText, prefs); err != nil {
		return err
	}

	logger.Info("job completed")
	return nil
}

// digest reads each menu image in file order, asks the model for a plain
// text analysis, and concatenates the replies. Each file is deleted once
// its text has been obtained; a deletion failure is logged and ignored.
func (p *Pipeline) digest(ctx context.Context, logger *slog.Logger, job *domain.Job) string {
	var digest strings.Builder

	for _, path := range job.Files {
		text := p.analyzeImage(ctx, logger, job.ID, path)
		digest.WriteString(text)
		digest.WriteString("\n\n")

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to delete consumed menu image",
				"file", path,
				"error", err)
		}
	}

	return digest.String()
}

// analyzeImage produces the analysis text for one menu image, degrading to
// an inline error string when the file is unreadable or the completion
// fails.
func (p *Pipeline) analyzeImage(ctx context.Context, logger *slog.Logger, jobID, path string) string {
	image, err := os.ReadFile(path)
	if err != nil {
		return p.degrade(ctx, logger, jobID, stageDigest,
			fmt.Errorf("failed to read menu image %s: %w", path, err))
	}

	text, err := p.client.Complete(ctx, menuAnalysisPrompt, image)
	if err != nil {
		return p.degrade(ctx, logger, jobID, stageDigest, err)
	}
	return text
}

// publishQuestions runs the question generation stage and persists the
// question set, the digest, and the questions_ready status, in that order.
func (p *Pipeline) publishQuestions(ctx context.Context, logger *slog.Logger, jobID, menuText string) error {
	raw := p.completeText(ctx, logger, jobID, stageQuestions, func() (string, error) {
		prompt, err := questionsPrompt(menuText)
		if err != nil {
			return "", err
		}
		return p.client.Complete(ctx, prompt, nil)
	})

	questions, err := extract.Questions(raw)
	if err != nil {
		p.reportExtractionFailure(ctx, jobID, stageQuestions, raw, err)
		questions = domain.QuestionSet{}
	}

	if err := p.records.SetQuestions(ctx, jobID, questions); err != nil {
		return fmt.Errorf("failed to persist questions: %w", err)
	}
	if err := p.records.SetMenuText(ctx, jobID, menuText); err != nil {
		return fmt.Errorf("failed to persist menu text: %w", err)
	}
	if err := p.records.SetStatus(ctx, jobID, domain.JobStatusQuestionsReady); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// awaitPreferences polls the store until the patron's answers appear,
// bounded by the configured timeout and the run context. A stored value
// that cannot be decoded is treated as observed-but-empty: waiting longer
// cannot fix it, since preferences are written exactly once.
func (p *Pipeline) awaitPreferences(ctx context.Context, logger *slog.Logger, jobID string) (domain.Preferences, error) {
	waitCtx, cancel := context.WithTimeout(ctx, p.preferencesTimeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		prefs, err := p.records.GetPreferences(waitCtx, jobID)
		switch {
		case err == nil:
			logger.Info("user preferences observed", "answer_count", len(prefs))
			return prefs, nil
		case errors.Is(err, store.ErrNotFound):
			// Keep waiting.
		case waitCtx.Err() != nil:
			// Store read failed because the wait expired; fall through to
			// the timeout path below.
		default:
			logger.Warn("stored preferences are unreadable, proceeding without them", "error", err)
			return domain.Preferences{}, nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: %v", ErrPreferencesTimeout, waitCtx.Err())
		}
	}
}

// publishRecommendations runs the recommendation stage and persists the
// result and the completed status.
func (p *Pipeline) publishRecommendations(
	ctx context.Context,
	logger *slog.Logger,
	jobID, menuText string,
	prefs domain.Preferences,
) error {
	raw := p.completeText(ctx, logger, jobID, stageRecommendation, func() (string, error) {
		prefsJSON, err := json.Marshal(prefs)
		if err != nil {
			return "", fmt.Errorf("failed to marshal preferences: %w", err)
		}
		prompt, err := recommendationsPrompt(menuText, string(prefsJSON))
		if err != nil {
			return "", err
		}
		return p.client.Complete(ctx, prompt, nil)
	})

	result, err := extract.Recommendations(raw)
	if err != nil {
		p.reportExtractionFailure(ctx, jobID, stageRecommendation, raw, err)
		result = domain.RecommendationSet{}
	}

	if err := p.records.SetResult(ctx, jobID, result); err != nil {
		return fmt.Errorf("failed to persist result: %w", err)
	}
	if err := p.records.SetStatus(ctx, jobID, domain.JobStatusCompleted); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

// abandon marks the job abandoned after a failed wait for preferences.
// Status write failures are logged, not propagated; the run is already
// ending with the wait error.
func (p *Pipeline) abandon(ctx context.Context, logger *slog.Logger, jobID string, cause error) {
	// The run context may already be cancelled; the status write gets its
	// own short deadline so shutdown still records the terminal state.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.records.SetStatus(writeCtx, jobID, domain.JobStatusAbandoned); err != nil {
		logger.Error("failed to mark job abandoned", "error", err)
	}

	if err := p.emitter.EmitEvent(writeCtx, events.NewPipelineEvent(
		events.EventJobAbandoned, jobID, stageAwait, cause)); err != nil {
		logger.Error("failed to emit abandonment event", "error", err)
	}
}

// completeText runs a completion closure and degrades a failure into an
// inline error string, exactly as the model's own text would flow onward.
func (p *Pipeline) completeText(
	ctx context.Context,
	logger *slog.Logger,
	jobID, stage string,
	complete func() (string, error),
) string {
	text, err := complete()
	if err != nil {
		return p.degrade(ctx, logger, jobID, stage, err)
	}
	return text
}

// degrade reports a failed completion and returns the inline substitute
// string that takes the place of the expected model text.
func (p *Pipeline) degrade(ctx context.Context, logger *slog.Logger, jobID, stage string, cause error) string {
	logger.Warn("completion degraded to inline error text",
		"stage", stage,
		"error", cause)

	if err := p.emitter.EmitEvent(ctx, events.NewPipelineEvent(
		events.EventCompletionDegraded, jobID, stage, cause)); err != nil {
		logger.Error("failed to emit degradation event", "error", err)
	}

	return fmt.Sprintf("Error: %v", cause)
}

// reportExtractionFailure publishes an extraction failure, carrying the
// original model text so it is recoverable from the observability channel.
func (p *Pipeline) reportExtractionFailure(ctx context.Context, jobID, stage, original string, cause error) {
	event := events.NewPipelineEvent(events.EventExtractionFailed, jobID, stage, cause)
	event.OriginalText = original

	if err := p.emitter.EmitEvent(ctx, event); err != nil {
		p.logger.Error("failed to emit extraction failure event",
			"job_id", jobID,
			"stage", stage,
			"error", err)
	}
}
