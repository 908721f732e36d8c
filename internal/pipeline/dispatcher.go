package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/menupick/menupick/internal/domain"
	"github.com/menupick/menupick/internal/store"
)

// popRetryDelay spaces out retries when the queue itself is failing, so a
// down store does not turn the consumer loop hot.
const popRetryDelay = time.Second

// JobRunner executes one job to a terminal state. Satisfied by *Pipeline;
// tests substitute fakes.
type JobRunner interface {
	Run(ctx context.Context, job *domain.Job) error
}

// Dispatcher is the long-lived queue consumer. Each iteration blocks on the
// shared queue, decodes the popped payload, and launches an independent
// goroutine running the job pipeline, then immediately loops for the next
// item. It holds no state across iterations beyond the in-flight WaitGroup.
type Dispatcher struct {
	queue  store.Queue
	runner JobRunner
	logger *slog.Logger

	// sem caps concurrent job executions; nil means unbounded, the
	// original thread-per-job behavior.
	sem *semaphore.Weighted

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. concurrency caps simultaneous job
// executions; zero or negative means unbounded.
func NewDispatcher(queue store.Queue, runner JobRunner, logger *slog.Logger, concurrency int) (*Dispatcher, error) {
	if queue == nil {
		return nil, errors.New("queue cannot be nil")
	}
	if runner == nil {
		return nil, errors.New("job runner cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	d := &Dispatcher{
		queue:  queue,
		runner: runner,
		logger: logger.With("component", "dispatcher"),
	}
	if concurrency > 0 {
		d.sem = semaphore.NewWeighted(int64(concurrency))
	}
	return d, nil
}

// Run consumes the queue until ctx is cancelled, then waits for all
// in-flight job executions to finish. Malformed payloads are logged and
// skipped; they never stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.wg.Wait()

	d.logger.Info("dispatcher started",
		"queue", store.JobQueueName,
		"bounded", d.sem != nil)

	for {
		payload, err := d.queue.BPop(ctx, store.JobQueueName)
		if err != nil {
			if ctx.Err() != nil {
				d.logger.Info("dispatcher stopping", "reason", ctx.Err())
				return nil
			}

			d.logger.Error("failed to pop job from queue", "error", err)
			select {
			case <-time.After(popRetryDelay):
				continue
			case <-ctx.Done():
				d.logger.Info("dispatcher stopping", "reason", ctx.Err())
				return nil
			}
		}

		job, err := domain.ParseJob(payload)
		if err != nil {
			d.logger.Error("skipping malformed job payload",
				"error", err,
				"payload_bytes", len(payload))
			continue
		}

		if d.sem != nil {
			if err := d.sem.Acquire(ctx, 1); err != nil {
				d.logger.Info("dispatcher stopping", "reason", err)
				return nil
			}
		}

		d.wg.Add(1)
		go d.process(ctx, job)
	}
}

// process runs one job in its own goroutine and releases its concurrency
// slot when done. Run errors are logged here; the pipeline has already
// recorded whatever terminal state applies.
func (d *Dispatcher) process(ctx context.Context, job *domain.Job) {
	defer d.wg.Done()
	if d.sem != nil {
		defer d.sem.Release(1)
	}

	if err := d.runner.Run(ctx, job); err != nil {
		d.logger.Error("job run ended with error",
			"job_id", job.ID,
			"error", err)
	}
}
