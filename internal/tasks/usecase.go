package tasks

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
)

// Processor runs one attempt of a task of its kind.
type Processor interface {
	Kind() models.TaskKind
	Process(ctx context.Context, id string) error
}

type UseCase interface {
	ListDue(ctx context.Context, kind models.TaskKind, limit int) ([]*models.Task, error)
	Process(ctx context.Context, kind models.TaskKind, id string) error
	Kinds() []models.TaskKind
}
