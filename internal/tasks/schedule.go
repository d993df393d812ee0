package tasks

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
)

// The Schedule helpers insert ledger rows inside the caller's transaction, due at nowMs.

func ScheduleDeleteKey(ctx context.Context, tx store.Tx, key string, nowMs int64) error {
	return insert(ctx, tx, models.TaskDeleteKey, key, models.DeleteKeyPayload{}, nowMs)
}

func ScheduleDeleteUploadFile(ctx context.Context, tx store.Tx, filename string, payload models.DeleteUploadFilePayload, nowMs int64) error {
	return insert(ctx, tx, models.TaskDeleteUploadFile, filename, payload, nowMs)
}

func ScheduleUsageStart(ctx context.Context, tx store.Tx, name string, payload models.UsagePayload, nowMs int64) error {
	return insert(ctx, tx, models.TaskUsageStart, name, payload, nowMs)
}

func ScheduleUsageEnd(ctx context.Context, tx store.Tx, name string, accountID string, nowMs int64) error {
	return insert(ctx, tx, models.TaskUsageEnd, name, models.UsagePayload{AccountID: accountID, TimeMs: nowMs}, nowMs)
}

func ScheduleFormatting(ctx context.Context, tx store.Tx, payload models.FormattingPayload, nowMs int64) error {
	id := models.FormattingTaskID(payload.ContainerID, payload.StorageFilename)
	return insert(ctx, tx, models.TaskFormatting, id, payload, nowMs)
}

func SchedulePlaylist(ctx context.Context, tx store.Tx, kind models.TaskKind, containerID string, version int64, nowMs int64) error {
	id := models.PlaylistTaskID(containerID, version)
	return insert(ctx, tx, kind, id, models.PlaylistPayload{ContainerID: containerID, Version: version}, nowMs)
}

// RetireTrackDir schedules removal of a track directory together with the end of its storage usage.
func RetireTrackDir(ctx context.Context, tx store.Tx, dir string, accountID string, nowMs int64) error {
	if err := ScheduleDeleteKey(ctx, tx, dir, nowMs); err != nil {
		return err
	}
	return ScheduleUsageEnd(ctx, tx, dir, accountID, nowMs)
}

func insert(ctx context.Context, tx store.Tx, kind models.TaskKind, id string, payload interface{}, nowMs int64) error {
	task, err := models.NewTask(kind, id, payload, nowMs)
	if err != nil {
		return err
	}
	return tx.InsertTask(ctx, task)
}

// RetireProcessing stops whatever upload or formatting pipeline c is running: the in-flight formatting task is
// dropped and the raw upload file is scheduled for deletion. It does not clear c.Processing.
func RetireProcessing(ctx context.Context, tx store.Tx, c *models.VideoContainer, nowMs int64) error {
	payload := models.DeleteUploadFilePayload{AccountID: c.AccountID}
	switch p := c.Processing.(type) {
	case nil:
		return nil
	case models.Uploading:
		payload.SessionURL = p.Upload.SessionURL
	case models.Formatting:
		// usage of the raw file started when the upload completed
		payload.RecordEnd = true
		if err := tx.DeleteTask(ctx, models.TaskFormatting, models.FormattingTaskID(c.ContainerID, p.StorageFilename)); err != nil {
			return err
		}
	}
	return ScheduleDeleteUploadFile(ctx, tx, c.Processing.UploadFilename(), payload, nowMs)
}
