package processors

import (
	"context"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

// NewDeleteKeyProcessor removes a publish store object, or every object under it when the key ends in "/".
func NewDeleteKeyProcessor(st store.Store, publish storage.PublishStore, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.DeleteKeyPayload](models.TaskDeleteKey, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, _ models.DeleteKeyPayload) (tasks.Outcome, error) {
			if models.IsPrefixKey(task.ID) {
				return tasks.Outcome{}, publish.DeletePrefix(ctx, task.ID)
			}
			return tasks.Outcome{}, publish.DeleteObject(ctx, task.ID)
		})
}

// NewDeleteUploadFileProcessor cancels the upload session of a raw file, deletes the file and drops its index row.
func NewDeleteUploadFileProcessor(st store.Store, primary storage.PrimaryStore, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.DeleteUploadFilePayload](models.TaskDeleteUploadFile, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, p models.DeleteUploadFilePayload) (tasks.Outcome, error) {
			if err := primary.DeleteAndCancel(ctx, task.ID, p.SessionURL); err != nil {
				return tasks.Outcome{}, err
			}
			return tasks.Then(func(ctx context.Context, tx store.Tx) error {
				if err := tx.DeleteStorageFile(ctx, task.ID); err != nil {
					return err
				}
				if !p.RecordEnd {
					return nil
				}
				return tasks.ScheduleUsageEnd(ctx, tx, task.ID, p.AccountID, now().UnixMilli())
			}), nil
		})
}
