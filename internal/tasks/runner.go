package tasks

import (
	"context"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

// Finalizer applies the outcome of a task inside the transaction that deletes the task row.
type Finalizer func(ctx context.Context, tx store.Tx) error

// Outcome is what an executed task leaves to do transactionally.
type Outcome struct {
	Apply Finalizer
	// Abandon runs instead of Apply when the task row was deleted while the task executed.
	Abandon Finalizer
}

// Then is an Outcome that only applies f.
func Then(f Finalizer) Outcome {
	return Outcome{Apply: f}
}

// ExecuteFunc performs the slow side effect of a task outside any transaction.
// A returned error leaves the task row in place for a later attempt.
type ExecuteFunc[P any] func(ctx context.Context, task *models.Task, payload P) (Outcome, error)

// Backoff maps the retry count of a claimed task to the delay before it is due again.
type Backoff func(retryCount int) time.Duration

func FlatBackoff(step time.Duration) Backoff {
	return func(int) time.Duration { return step }
}

// Runner drives one task kind through claim, execute and finalize.
type Runner[P any] struct {
	kind    models.TaskKind
	store   store.Store
	backoff Backoff
	now     func() time.Time
	execute ExecuteFunc[P]
	logger  logger.Logger
}

func NewRunner[P any](kind models.TaskKind, st store.Store, backoff Backoff, now func() time.Time, logger logger.Logger, execute ExecuteFunc[P]) *Runner[P] {
	return &Runner[P]{
		kind:    kind,
		store:   st,
		backoff: backoff,
		now:     now,
		execute: execute,
		logger:  logger,
	}
}

func (r *Runner[P]) Kind() models.TaskKind {
	return r.kind
}

// Process runs one attempt of task id. A task that no longer exists is reported as NotFound.
func (r *Runner[P]) Process(ctx context.Context, id string) error {
	task, err := r.claim(ctx, id)
	if err != nil {
		return err
	}
	var payload P
	if err = task.Decode(&payload); err != nil {
		r.logger.Errorf("Process - %s %s decode error: %v", r.kind, id, err)
		return err
	}
	outcome, err := r.execute(ctx, task, payload)
	if err != nil {
		r.logger.Errorf("Process - %s %s attempt %d error: %v", r.kind, id, task.RetryCount, err)
		return err
	}
	if err = r.finalize(ctx, id, outcome); err != nil {
		r.logger.Errorf("Process - %s %s finalize error: %v", r.kind, id, err)
		return err
	}
	return nil
}

func (r *Runner[P]) claim(ctx context.Context, id string) (*models.Task, error) {
	var claimed *models.Task
	err := r.store.InTx(ctx, func(tx store.Tx) error {
		task, err := tx.GetTask(ctx, r.kind, id)
		if err != nil {
			return err
		}
		task.RetryCount++
		task.ExecutionTimeMs = r.now().Add(r.backoff(task.RetryCount)).UnixMilli()
		if err = tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		claimed = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// finalize deletes the task row and applies the outcome in one transaction. A row that is already gone means
// another attempt finished first, or the task was cancelled, and only Abandon runs.
func (r *Runner[P]) finalize(ctx context.Context, id string, outcome Outcome) error {
	return r.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetTask(ctx, r.kind, id); err != nil {
			if !httperrors.IsNotFound(err) {
				return err
			}
			r.logger.Debugf("finalize - %s %s already finished", r.kind, id)
			if outcome.Abandon == nil {
				return nil
			}
			return outcome.Abandon(ctx, tx)
		}
		if err := tx.DeleteTask(ctx, r.kind, id); err != nil {
			return err
		}
		if outcome.Apply == nil {
			return nil
		}
		return outcome.Apply(ctx, tx)
	})
}
