package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/internal/uploads"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/google/uuid"
)

type uploadUC struct {
	store    store.Store
	primary  storage.PrimaryStore
	policies map[models.ProcessingKind]uploads.KindPolicy
	now      func() time.Time
	logger   logger.Logger
}

func NewUploadUseCase(st store.Store, primary storage.PrimaryStore, now func() time.Time, log logger.Logger, policies ...uploads.KindPolicy) uploads.UseCase {
	byKind := make(map[models.ProcessingKind]uploads.KindPolicy, len(policies))
	for _, p := range policies {
		byKind[p.Kind()] = p
	}
	return &uploadUC{
		store:    st,
		primary:  primary,
		policies: byKind,
		now:      now,
		logger:   log,
	}
}

// StartUpload begins an upload of the given kind or resumes the one in progress. A session is only
// created when the container has none or the stored one expired.
func (u *uploadUC) StartUpload(ctx context.Context, containerID string, kind models.ProcessingKind, input *models.StartUploadInput) (*models.UploadSession, error) {
	policy, err := u.policy(kind)
	if err != nil {
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return nil, err
	}
	if err = policy.Accept(input); err != nil {
		return nil, err
	}
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var upload models.ResumableUploadState
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := getOwned(ctx, tx, containerID, principal)
		if err != nil {
			return err
		}
		switch p := c.Processing.(type) {
		case nil:
			nowMs := u.now().UnixMilli()
			upload = models.ResumableUploadState{
				StorageFilename: fmt.Sprintf("uploads/%s/%s", c.AccountID, uuid.New().String()),
				ContentLength:   input.ContentLength,
				ContentType:     input.ContentType,
				Checksum:        input.Checksum,
			}
			err = tx.InsertStorageFile(ctx, &models.StorageFile{
				Name:          upload.StorageFilename,
				AccountID:     c.AccountID,
				ContainerID:   c.ContainerID,
				CreatedTimeMs: nowMs,
			})
			if err != nil {
				return err
			}
			c.Processing = models.Uploading{Kind: kind, Upload: upload}
			return tx.UpdateContainer(ctx, c)
		case models.Uploading:
			if p.Kind != kind {
				return httperrors.NewBadRequestError(fmt.Sprintf("a %s upload is in progress", p.Kind))
			}
			if p.Upload.ContentLength != input.ContentLength || p.Upload.ContentType != input.ContentType || p.Upload.Checksum != input.Checksum {
				return httperrors.NewBadRequestError("upload parameters conflict with the upload in progress")
			}
			upload = p.Upload
			return nil
		default:
			return httperrors.NewBadRequestError(fmt.Sprintf("container is %s formatting", p.ProcessingKind()))
		}
	})
	if err != nil {
		u.logger.Errorf("StartUpload - %s error: %v", containerID, err)
		return nil, err
	}

	if upload.SessionURL != "" {
		progress, err := u.primary.CheckProgress(ctx, upload.SessionURL, upload.ContentLength)
		if err != nil {
			u.logger.Errorf("StartUpload - CheckProgress error: %v", err)
			return nil, err
		}
		if progress.URLValid {
			return &models.UploadSession{
				StorageFilename: upload.StorageFilename,
				SessionURL:      upload.SessionURL,
				ByteOffset:      progress.ByteOffset,
				ContentLength:   upload.ContentLength,
			}, nil
		}
		u.logger.Infof("StartUpload - session of %s expired, creating a new one", upload.StorageFilename)
	}

	sessionURL, err := u.primary.CreateSession(ctx, upload.StorageFilename, upload.ContentType, upload.ContentLength)
	if err != nil {
		u.logger.Errorf("StartUpload - CreateSession error: %v", err)
		return nil, err
	}
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := getOwned(ctx, tx, containerID, principal)
		if err != nil {
			return err
		}
		cur, ok := c.Processing.(models.Uploading)
		if !ok || cur.Upload.StorageFilename != upload.StorageFilename || cur.Upload.SessionURL != upload.SessionURL {
			return httperrors.NewConflictError("upload state changed while creating the session")
		}
		cur.Upload.SessionURL = sessionURL
		c.Processing = cur
		return tx.UpdateContainer(ctx, c)
	})
	if err != nil {
		if cancelErr := u.primary.Cancel(ctx, sessionURL); cancelErr != nil {
			u.logger.Warnf("StartUpload - Cancel of unused session error: %v", cancelErr)
		}
		u.logger.Errorf("StartUpload - %s error: %v", containerID, err)
		return nil, err
	}
	return &models.UploadSession{
		StorageFilename: upload.StorageFilename,
		SessionURL:      sessionURL,
		ContentLength:   upload.ContentLength,
	}, nil
}

// CompleteUpload hands a fully received upload to the formatter.
func (u *uploadUC) CompleteUpload(ctx context.Context, containerID string, kind models.ProcessingKind) (*models.VideoContainer, error) {
	if _, err := u.policy(kind); err != nil {
		return nil, err
	}
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.store.GetContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if err = checkOwner(c, principal); err != nil {
		return nil, err
	}
	uploading, ok := c.Processing.(models.Uploading)
	if !ok || uploading.Kind != kind || uploading.Upload.SessionURL == "" {
		return nil, httperrors.NewBadRequestError(fmt.Sprintf("no %s upload in progress", kind))
	}
	upload := uploading.Upload
	progress, err := u.primary.CheckProgress(ctx, upload.SessionURL, upload.ContentLength)
	if err != nil {
		u.logger.Errorf("CompleteUpload - CheckProgress error: %v", err)
		return nil, err
	}
	if !progress.URLValid || progress.ByteOffset < upload.ContentLength {
		return nil, httperrors.NewBadRequestError(fmt.Sprintf("upload incomplete: %d of %d bytes received", progress.ByteOffset, upload.ContentLength))
	}

	var updated *models.VideoContainer
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := getOwned(ctx, tx, containerID, principal)
		if err != nil {
			return err
		}
		cur, ok := c.Processing.(models.Uploading)
		if !ok || cur.Upload.StorageFilename != upload.StorageFilename || cur.Upload.SessionURL != upload.SessionURL {
			return httperrors.NewConflictError("upload state changed while checking progress")
		}
		nowMs := u.now().UnixMilli()
		c.Processing = models.Formatting{
			Kind:            kind,
			StorageFilename: upload.StorageFilename,
			ContentLength:   upload.ContentLength,
			StartedTimeMs:   nowMs,
		}
		if err = tx.UpdateContainer(ctx, c); err != nil {
			return err
		}
		err = tasks.ScheduleFormatting(ctx, tx, models.FormattingPayload{
			ContainerID:     c.ContainerID,
			StorageFilename: upload.StorageFilename,
			Kind:            kind,
		}, nowMs)
		if err != nil {
			return err
		}
		err = tasks.ScheduleUsageStart(ctx, tx, upload.StorageFilename, models.UsagePayload{
			AccountID:  c.AccountID,
			TotalBytes: upload.ContentLength,
			TimeMs:     nowMs,
		}, nowMs)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		u.logger.Errorf("CompleteUpload - %s error: %v", containerID, err)
		return nil, err
	}
	return updated, nil
}

// Cancel abandons the upload or formatting of the given kind.
func (u *uploadUC) Cancel(ctx context.Context, containerID string, kind models.ProcessingKind) (*models.VideoContainer, error) {
	if _, err := u.policy(kind); err != nil {
		return nil, err
	}
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	var updated *models.VideoContainer
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := getOwned(ctx, tx, containerID, principal)
		if err != nil {
			return err
		}
		if c.Processing == nil || c.Processing.ProcessingKind() != kind {
			return httperrors.NewBadRequestError(fmt.Sprintf("no %s processing to cancel", kind))
		}
		if err = tasks.RetireProcessing(ctx, tx, c, u.now().UnixMilli()); err != nil {
			return err
		}
		c.Processing = nil
		if err = tx.UpdateContainer(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		u.logger.Errorf("Cancel - %s error: %v", containerID, err)
		return nil, err
	}
	return updated, nil
}

func (u *uploadUC) policy(kind models.ProcessingKind) (uploads.KindPolicy, error) {
	p, ok := u.policies[kind]
	if !ok {
		return nil, httperrors.NewBadRequestError(fmt.Sprintf("unknown upload kind %q", kind))
	}
	return p, nil
}

func getOwned(ctx context.Context, tx store.Tx, containerID string, principal *utils.Principal) (*models.VideoContainer, error) {
	c, err := tx.GetContainer(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if err = checkOwner(c, principal); err != nil {
		return nil, err
	}
	return c, nil
}

func checkOwner(c *models.VideoContainer, principal *utils.Principal) error {
	if c.AccountID != principal.AccountID {
		return httperrors.NewNotFoundError(fmt.Sprintf("container %s", c.ContainerID))
	}
	return nil
}
