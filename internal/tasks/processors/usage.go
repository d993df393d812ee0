package processors

import (
	"context"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/internal/usage"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

func NewUsageStartProcessor(st store.Store, recorder usage.Recorder, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return newUsageProcessor(models.TaskUsageStart, usage.StorageStarted, st, recorder, backoff, now, logger)
}

func NewUsageEndProcessor(st store.Store, recorder usage.Recorder, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return newUsageProcessor(models.TaskUsageEnd, usage.StorageEnded, st, recorder, backoff, now, logger)
}

func newUsageProcessor(kind models.TaskKind, eventType usage.EventType, st store.Store, recorder usage.Recorder, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.UsagePayload](kind, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, p models.UsagePayload) (tasks.Outcome, error) {
			timeMs := p.TimeMs
			if timeMs == 0 {
				timeMs = task.CreatedTimeMs
			}
			return tasks.Outcome{}, recorder.Record(ctx, usage.Event{
				Type:       eventType,
				AccountID:  p.AccountID,
				Name:       task.ID,
				TotalBytes: p.TotalBytes,
				TimeMs:     timeMs,
			})
		})
}
