package processors

import (
	"context"
	"errors"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/formatter"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

// NewFormattingProcessor turns a fully uploaded file into staged tracks by running the formatter.
func NewFormattingProcessor(st store.Store, primary storage.PrimaryStore, f formatter.Formatter, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.FormattingPayload](models.TaskFormatting, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, p models.FormattingPayload) (tasks.Outcome, error) {
			c, err := st.GetContainer(ctx, p.ContainerID)
			if err != nil {
				if httperrors.IsNotFound(err) {
					return tasks.Outcome{}, nil
				}
				return tasks.Outcome{}, err
			}
			formatting, ok := isFormatting(c, p.StorageFilename)
			if !ok {
				logger.Debugf("Formatting - %s no longer formatting", task.ID)
				return tasks.Outcome{}, nil
			}

			report, err := f.Format(ctx, formatter.Request{
				ContainerID:  c.ContainerID,
				Kind:         formatting.Kind,
				SourceBucket: primary.Bucket(),
				SourceKey:    formatting.StorageFilename,
				OutputPrefix: c.StorageRootPrefix,
			})
			if err != nil {
				if errors.Is(err, formatter.ErrNonRetryable) {
					logger.Warnf("Formatting - %s rejected: %v", task.ID, err)
					return tasks.Then(failFormatting(p, err.Error(), now)), nil
				}
				return tasks.Outcome{}, err
			}

			discard := discardUnreferenced(p.ContainerID, c.StorageRootPrefix, report.Dirs(), now)
			return tasks.Outcome{
				Apply: func(ctx context.Context, tx store.Tx) error {
					cur, err := tx.GetContainer(ctx, p.ContainerID)
					if err != nil {
						if httperrors.IsNotFound(err) {
							return discard(ctx, tx)
						}
						return err
					}
					if _, ok := isFormatting(cur, p.StorageFilename); !ok {
						return discard(ctx, tx)
					}
					return applyReport(ctx, tx, cur, report, now().UnixMilli())
				},
				Abandon: discard,
			}, nil
		})
}

func isFormatting(c *models.VideoContainer, filename string) (models.Formatting, bool) {
	f, ok := c.Processing.(models.Formatting)
	if !ok || f.StorageFilename != filename {
		return models.Formatting{}, false
	}
	return f, true
}

// applyReport stages the produced tracks, ends processing and retires the raw upload.
func applyReport(ctx context.Context, tx store.Tx, c *models.VideoContainer, report *formatter.Report, nowMs int64) error {
	filename := c.Processing.UploadFilename()
	for _, t := range report.VideoTracks {
		c.VideoTracks = append(c.VideoTracks, &models.VideoTrack{Dirname: t.Dirname, Staging: models.StageAdd[models.VideoMetadata]{Metadata: t.Metadata}})
	}
	for _, t := range report.AudioTracks {
		c.AudioTracks = append(c.AudioTracks, &models.AudioTrack{Dirname: t.Dirname, Staging: models.StageAdd[models.AudioMetadata]{Metadata: t.Metadata}})
	}
	for _, t := range report.SubtitleTracks {
		c.SubtitleTracks = append(c.SubtitleTracks, &models.SubtitleTrack{Dirname: t.Dirname, Staging: models.StageAdd[models.SubtitleMetadata]{Metadata: t.Metadata}})
	}
	c.Processing = nil
	if err := tx.UpdateContainer(ctx, c); err != nil {
		return err
	}
	payload := models.DeleteUploadFilePayload{AccountID: c.AccountID, RecordEnd: true}
	if err := tasks.ScheduleDeleteUploadFile(ctx, tx, filename, payload, nowMs); err != nil {
		return err
	}
	usageOf := func(dir string, totalBytes int64) error {
		return tasks.ScheduleUsageStart(ctx, tx, c.TrackDir(dir), models.UsagePayload{AccountID: c.AccountID, TotalBytes: totalBytes, TimeMs: nowMs}, nowMs)
	}
	for _, t := range report.VideoTracks {
		if err := usageOf(t.Dirname, t.TotalBytes); err != nil {
			return err
		}
	}
	for _, t := range report.AudioTracks {
		if err := usageOf(t.Dirname, t.TotalBytes); err != nil {
			return err
		}
	}
	for _, t := range report.SubtitleTracks {
		if err := usageOf(t.Dirname, t.TotalBytes); err != nil {
			return err
		}
	}
	return nil
}

// failFormatting records why the file was rejected and retires it, if the container still formats it.
func failFormatting(p models.FormattingPayload, reason string, now func() time.Time) tasks.Finalizer {
	return func(ctx context.Context, tx store.Tx) error {
		c, err := tx.GetContainer(ctx, p.ContainerID)
		if err != nil {
			if httperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		f, ok := isFormatting(c, p.StorageFilename)
		if !ok {
			return nil
		}
		nowMs := now().UnixMilli()
		c.AddFailure(models.FailureRecord{Kind: f.Kind, StorageFilename: f.StorageFilename, Reason: reason, TimeMs: nowMs})
		c.Processing = nil
		if err = tx.UpdateContainer(ctx, c); err != nil {
			return err
		}
		payload := models.DeleteUploadFilePayload{AccountID: c.AccountID, RecordEnd: true}
		return tasks.ScheduleDeleteUploadFile(ctx, tx, f.StorageFilename, payload, nowMs)
	}
}

// discardUnreferenced deletes produced directories that no track of the container points at.
func discardUnreferenced(containerID, root string, dirs []string, now func() time.Time) tasks.Finalizer {
	return func(ctx context.Context, tx store.Tx) error {
		referenced := map[string]bool{}
		c, err := tx.GetContainer(ctx, containerID)
		switch {
		case err == nil:
			for _, d := range c.TrackDirs() {
				referenced[d] = true
			}
		case !httperrors.IsNotFound(err):
			return err
		}
		nowMs := now().UnixMilli()
		for _, d := range dirs {
			if referenced[d] {
				continue
			}
			if err := tasks.ScheduleDeleteKey(ctx, tx, root+d+"/", nowMs); err != nil {
				return err
			}
		}
		return nil
	}
}
