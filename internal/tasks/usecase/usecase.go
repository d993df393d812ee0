package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

type taskUseCase struct {
	store      store.Store
	processors map[models.TaskKind]tasks.Processor
	now        func() time.Time
	logger     logger.Logger
}

func NewTaskUseCase(st store.Store, now func() time.Time, logger logger.Logger, processors ...tasks.Processor) tasks.UseCase {
	byKind := make(map[models.TaskKind]tasks.Processor, len(processors))
	for _, p := range processors {
		byKind[p.Kind()] = p
	}
	return &taskUseCase{
		store:      st,
		processors: byKind,
		now:        now,
		logger:     logger,
	}
}

func (u *taskUseCase) ListDue(ctx context.Context, kind models.TaskKind, limit int) ([]*models.Task, error) {
	if _, ok := u.processors[kind]; !ok {
		return nil, httperrors.NewBadRequestError(fmt.Sprintf("unknown task kind %s", kind))
	}
	due, err := u.store.ListDueTasks(ctx, kind, u.now().UnixMilli(), limit)
	if err != nil {
		u.logger.Errorf("ListDue - ListDueTasks error: %v", err)
		return nil, err
	}
	return due, nil
}

func (u *taskUseCase) Process(ctx context.Context, kind models.TaskKind, id string) error {
	p, ok := u.processors[kind]
	if !ok {
		return httperrors.NewBadRequestError(fmt.Sprintf("unknown task kind %s", kind))
	}
	return p.Process(ctx, id)
}

func (u *taskUseCase) Kinds() []models.TaskKind {
	kinds := make([]models.TaskKind, 0, len(u.processors))
	for _, k := range models.AllTaskKinds {
		if _, ok := u.processors[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
