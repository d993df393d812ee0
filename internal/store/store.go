package store

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
)

// Store is the transactional datastore holding containers, the task ledger and the storage file index.
type Store interface {
	// InTx runs fn in one transaction, committing only when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetContainer(ctx context.Context, containerID string) (*models.VideoContainer, error)
	// ListDueTasks returns tasks of kind with ExecutionTimeMs <= nowMs, earliest due first.
	ListDueTasks(ctx context.Context, kind models.TaskKind, nowMs int64, limit int) ([]*models.Task, error)
	CountTasksCreatedBefore(ctx context.Context, createdBeforeMs int64) (map[models.TaskKind]int, error)
}

// Tx is the view of the datastore inside a transaction. Reads lock the row they return.
type Tx interface {
	GetContainer(ctx context.Context, containerID string) (*models.VideoContainer, error)
	InsertContainer(ctx context.Context, c *models.VideoContainer) error
	UpdateContainer(ctx context.Context, c *models.VideoContainer) error
	DeleteContainer(ctx context.Context, containerID string) error

	GetTask(ctx context.Context, kind models.TaskKind, id string) (*models.Task, error)
	// InsertTask keeps an existing row with the same key untouched.
	InsertTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, kind models.TaskKind, id string) error

	InsertStorageFile(ctx context.Context, f *models.StorageFile) error
	DeleteStorageFile(ctx context.Context, name string) error
}

// Notifier is told which task kinds gained rows once a transaction commits.
type Notifier interface {
	TasksInserted(ctx context.Context, kinds []models.TaskKind)
}
