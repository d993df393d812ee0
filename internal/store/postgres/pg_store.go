package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type pgStore struct {
	db       *sqlx.DB
	notifier store.Notifier
	logger   logger.Logger
}

// NewPgStore returns a Store on postgres. notifier may be nil.
func NewPgStore(db *sqlx.DB, notifier store.Notifier, logger logger.Logger) store.Store {
	return &pgStore{db: db, notifier: notifier, logger: logger}
}

func (s *pgStore) InTx(ctx context.Context, fn func(tx store.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &pgTx{tx: sqlTx}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Errorf("InTx - rollback error: %v", rbErr)
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	if s.notifier != nil && len(tx.inserted) > 0 {
		s.notifier.TasksInserted(ctx, tx.insertedKinds())
	}
	return nil
}

func (s *pgStore) GetContainer(ctx context.Context, containerID string) (*models.VideoContainer, error) {
	return getContainer(ctx, s.db, getContainerQuery, containerID)
}

func (s *pgStore) ListDueTasks(ctx context.Context, kind models.TaskKind, nowMs int64, limit int) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	if err := s.db.SelectContext(ctx, &tasks, listDueTasksQuery, kind, nowMs, limit); err != nil {
		return nil, fmt.Errorf("failed to list due %s tasks: %w", kind, err)
	}
	return tasks, nil
}

func (s *pgStore) CountTasksCreatedBefore(ctx context.Context, createdBeforeMs int64) (map[models.TaskKind]int, error) {
	rows, err := s.db.QueryxContext(ctx, countTasksCreatedBeforeQuery, createdBeforeMs)
	if err != nil {
		return nil, fmt.Errorf("failed to count old tasks: %w", err)
	}
	defer rows.Close()
	counts := make(map[models.TaskKind]int)
	for rows.Next() {
		var row struct {
			Kind  models.TaskKind `db:"kind"`
			Total int             `db:"total"`
		}
		if err = rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[row.Kind] = row.Total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan task counts: %w", err)
	}
	return counts, nil
}

type pgTx struct {
	tx       *sqlx.Tx
	inserted map[models.TaskKind]struct{}
}

func (t *pgTx) insertedKinds() []models.TaskKind {
	kinds := make([]models.TaskKind, 0, len(t.inserted))
	for _, k := range models.AllTaskKinds {
		if _, ok := t.inserted[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (t *pgTx) GetContainer(ctx context.Context, containerID string) (*models.VideoContainer, error) {
	return getContainer(ctx, t.tx, getContainerForUpdateQuery, containerID)
}

func (t *pgTx) InsertContainer(ctx context.Context, c *models.VideoContainer) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode container: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, insertContainerQuery, c.ContainerID, c.AccountID, models.JSONB(data), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert container: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return httperrors.NewConflictError(fmt.Sprintf("container %s already exists", c.ContainerID))
	}
	return nil
}

func (t *pgTx) UpdateContainer(ctx context.Context, c *models.VideoContainer) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode container: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, updateContainerQuery, c.ContainerID, models.JSONB(data), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update container: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return httperrors.NewNotFoundError(fmt.Sprintf("container %s", c.ContainerID))
	}
	return nil
}

func (t *pgTx) DeleteContainer(ctx context.Context, containerID string) error {
	if _, err := t.tx.ExecContext(ctx, deleteContainerQuery, containerID); err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	return nil
}

func (t *pgTx) GetTask(ctx context.Context, kind models.TaskKind, id string) (*models.Task, error) {
	task := &models.Task{}
	if err := t.tx.GetContext(ctx, task, getTaskForUpdateQuery, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.NewNotFoundError(fmt.Sprintf("task %s %s", kind, id))
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (t *pgTx) InsertTask(ctx context.Context, task *models.Task) error {
	if _, err := t.tx.ExecContext(
		ctx,
		insertTaskQuery,
		task.Kind,
		task.ID,
		task.Payload,
		task.RetryCount,
		task.ExecutionTimeMs,
		task.CreatedTimeMs,
	); err != nil {
		return fmt.Errorf("failed to insert %s task: %w", task.Kind, err)
	}
	if t.inserted == nil {
		t.inserted = make(map[models.TaskKind]struct{})
	}
	t.inserted[task.Kind] = struct{}{}
	return nil
}

func (t *pgTx) UpdateTask(ctx context.Context, task *models.Task) error {
	if _, err := t.tx.ExecContext(
		ctx,
		updateTaskQuery,
		task.Kind,
		task.ID,
		task.Payload,
		task.RetryCount,
		task.ExecutionTimeMs,
	); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteTask(ctx context.Context, kind models.TaskKind, id string) error {
	if _, err := t.tx.ExecContext(ctx, deleteTaskQuery, kind, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (t *pgTx) InsertStorageFile(ctx context.Context, f *models.StorageFile) error {
	if _, err := t.tx.ExecContext(ctx, insertStorageFileQuery, f.Name, f.AccountID, f.ContainerID, f.CreatedTimeMs); err != nil {
		return fmt.Errorf("failed to insert storage file: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteStorageFile(ctx context.Context, name string) error {
	if _, err := t.tx.ExecContext(ctx, deleteStorageFileQuery, name); err != nil {
		return fmt.Errorf("failed to delete storage file: %w", err)
	}
	return nil
}

func getContainer(ctx context.Context, q sqlx.QueryerContext, query, containerID string) (*models.VideoContainer, error) {
	var data models.JSONB
	if err := q.QueryRowxContext(ctx, query, containerID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperrors.NewNotFoundError(fmt.Sprintf("container %s", containerID))
		}
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	c := &models.VideoContainer{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to decode container %s: %w", containerID, err)
	}
	return c, nil
}
