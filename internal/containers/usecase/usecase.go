package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/containers"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/playlist"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/google/uuid"
)

type containerUC struct {
	cfg    *config.Config
	store  store.Store
	now    func() time.Time
	logger logger.Logger
}

func NewContainerUseCase(cfg *config.Config, st store.Store, now func() time.Time, log logger.Logger) containers.UseCase {
	return &containerUC{
		cfg:    cfg,
		store:  st,
		now:    now,
		logger: log,
	}
}

func (u *containerUC) Create(ctx context.Context) (*models.VideoContainer, error) {
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	c := models.NewVideoContainer(uuid.New().String(), principal.AccountID, u.now().UTC())
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertContainer(ctx, c)
	})
	if err != nil {
		u.logger.Errorf("Create - InsertContainer error: %v", err)
		return nil, err
	}
	u.logger.Infof("Created container %s for account %s", c.ContainerID, c.AccountID)
	return c, nil
}

func (u *containerUC) Get(ctx context.Context, containerID string) (*models.VideoContainer, error) {
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
	return c, nil
}

// Delete removes a container and schedules cleanup of everything it references. Deleting a container
// that does not exist succeeds.
func (u *containerUC) Delete(ctx context.Context, containerID string) error {
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := tx.GetContainer(ctx, containerID)
		if err != nil {
			if httperrors.IsNotFound(err) {
				return nil
			}
			return err
		}
		if err = checkOwner(c, principal); err != nil {
			return err
		}
		nowMs := u.now().UnixMilli()
		if err = playlist.RetireTx(ctx, tx, c, nowMs); err != nil {
			return err
		}
		if err = tasks.RetireProcessing(ctx, tx, c, nowMs); err != nil {
			return err
		}
		for _, dir := range c.TrackDirs() {
			if err = tasks.RetireTrackDir(ctx, tx, c.TrackDir(dir), c.AccountID, nowMs); err != nil {
				return err
			}
		}
		return tx.DeleteContainer(ctx, containerID)
	})
	if err != nil {
		u.logger.Errorf("Delete - %s error: %v", containerID, err)
		return err
	}
	return nil
}

func (u *containerUC) UpdateTrack(ctx context.Context, containerID string, kind models.TrackKind, dirname string, update *models.TrackUpdate) (*models.VideoContainer, error) {
	if err := utils.ValidateStruct(ctx, update); err != nil {
		return nil, err
	}
	return u.mutate(ctx, containerID, "UpdateTrack", func(tx store.Tx, c *models.VideoContainer, _ int64) error {
		switch kind {
		case models.VideoTrackKind:
			return updateTrack(c.VideoTracks, dirname, update.ApplyVideo)
		case models.AudioTrackKind:
			return updateTrack(c.AudioTracks, dirname, update.ApplyAudio)
		case models.SubtitleTrackKind:
			return updateTrack(c.SubtitleTracks, dirname, update.ApplySubtitle)
		}
		return unknownKind(kind)
	})
}

func (u *containerUC) DeleteTrack(ctx context.Context, containerID string, kind models.TrackKind, dirname string) (*models.VideoContainer, error) {
	return u.mutate(ctx, containerID, "DeleteTrack", func(tx store.Tx, c *models.VideoContainer, _ int64) error {
		switch kind {
		case models.VideoTrackKind:
			return deleteTrack(c.VideoTracks, dirname)
		case models.AudioTrackKind:
			return deleteTrack(c.AudioTracks, dirname)
		case models.SubtitleTrackKind:
			return deleteTrack(c.SubtitleTracks, dirname)
		}
		return unknownKind(kind)
	})
}

func (u *containerUC) DropStaging(ctx context.Context, containerID string, kind models.TrackKind, dirname string) (*models.VideoContainer, error) {
	return u.mutate(ctx, containerID, "DropStaging", func(tx store.Tx, c *models.VideoContainer, nowMs int64) error {
		var (
			orphans []string
			err     error
		)
		switch kind {
		case models.VideoTrackKind:
			c.VideoTracks, orphans, err = dropStaging(c.VideoTracks, dirname)
		case models.AudioTrackKind:
			c.AudioTracks, orphans, err = dropStaging(c.AudioTracks, dirname)
		case models.SubtitleTrackKind:
			c.SubtitleTracks, orphans, err = dropStaging(c.SubtitleTracks, dirname)
		default:
			err = unknownKind(kind)
		}
		if err != nil {
			return err
		}
		return retireOrphans(ctx, tx, c, orphans, nowMs)
	})
}

// Commit folds all staged changes into committed metadata and starts publishing a new playlist version.
// A container that fails validation is left untouched and the failed rule is reported in the result.
func (u *containerUC) Commit(ctx context.Context, containerID string) (*models.CommitResult, error) {
	c, err := u.mutate(ctx, containerID, "Commit", func(tx store.Tx, c *models.VideoContainer, nowMs int64) error {
		var retired, dirs []string
		c.VideoTracks, dirs = commitStaging(c.VideoTracks)
		retired = append(retired, dirs...)
		c.AudioTracks, dirs = commitStaging(c.AudioTracks)
		retired = append(retired, dirs...)
		c.SubtitleTracks, dirs = commitStaging(c.SubtitleTracks)
		retired = append(retired, dirs...)

		if err := playlist.CommitTx(ctx, tx, c, retired, nowMs); err != nil {
			return err
		}
		if code := validateCommitted(c, u.cfg.Container); code != "" {
			return code
		}
		return nil
	})
	return commitResult(c, err)
}

// SaveStaging replaces the staging data of every track at once. The snapshot must list the container's tracks
// in their stored order, otherwise nothing is applied and TRACK_MISMATCH is reported.
func (u *containerUC) SaveStaging(ctx context.Context, containerID string, snapshot *models.StagingSnapshot) (*models.CommitResult, error) {
	if err := utils.ValidateStruct(ctx, snapshot); err != nil {
		return nil, err
	}
	c, err := u.mutate(ctx, containerID, "SaveStaging", func(tx store.Tx, c *models.VideoContainer, nowMs int64) error {
		if !matchesSnapshot(c.VideoTracks, snapshot.VideoTracks) ||
			!matchesSnapshot(c.AudioTracks, snapshot.AudioTracks) ||
			!matchesSnapshot(c.SubtitleTracks, snapshot.SubtitleTracks) {
			return models.TrackMismatch
		}
		if err := applySnapshot(c.VideoTracks, snapshot.VideoTracks); err != nil {
			return err
		}
		if err := applySnapshot(c.AudioTracks, snapshot.AudioTracks); err != nil {
			return err
		}
		if err := applySnapshot(c.SubtitleTracks, snapshot.SubtitleTracks); err != nil {
			return err
		}

		var orphans, dirs []string
		c.VideoTracks, dirs = pruneTracks(c.VideoTracks)
		orphans = append(orphans, dirs...)
		c.AudioTracks, dirs = pruneTracks(c.AudioTracks)
		orphans = append(orphans, dirs...)
		c.SubtitleTracks, dirs = pruneTracks(c.SubtitleTracks)
		orphans = append(orphans, dirs...)
		return retireOrphans(ctx, tx, c, orphans, nowMs)
	})
	return commitResult(c, err)
}

// mutate loads the caller's container in a transaction, applies fn and persists the result.
// Any error from fn rolls the whole transaction back.
func (u *containerUC) mutate(ctx context.Context, containerID, method string, fn func(tx store.Tx, c *models.VideoContainer, nowMs int64) error) (*models.VideoContainer, error) {
	principal, err := utils.GetPrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	var updated *models.VideoContainer
	err = u.store.InTx(ctx, func(tx store.Tx) error {
		c, err := tx.GetContainer(ctx, containerID)
		if err != nil {
			return err
		}
		if err = checkOwner(c, principal); err != nil {
			return err
		}
		if err = fn(tx, c, u.now().UnixMilli()); err != nil {
			return err
		}
		if err = tx.UpdateContainer(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		var code models.ValidationCode
		if !errors.As(err, &code) {
			u.logger.Errorf("%s - %s error: %v", method, containerID, err)
		}
		return nil, err
	}
	return updated, nil
}

func commitResult(c *models.VideoContainer, err error) (*models.CommitResult, error) {
	var code models.ValidationCode
	if errors.As(err, &code) {
		return &models.CommitResult{Success: false, Error: code}, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.CommitResult{Success: true, Container: c}, nil
}

func retireOrphans(ctx context.Context, tx store.Tx, c *models.VideoContainer, dirnames []string, nowMs int64) error {
	for _, d := range dirnames {
		if err := tasks.RetireTrackDir(ctx, tx, c.TrackDir(d), c.AccountID, nowMs); err != nil {
			return err
		}
	}
	return nil
}

// checkOwner hides containers of other accounts behind NotFound.
func checkOwner(c *models.VideoContainer, principal *utils.Principal) error {
	if c.AccountID != principal.AccountID {
		return httperrors.NewNotFoundError(fmt.Sprintf("container %s", c.ContainerID))
	}
	return nil
}

func unknownKind(kind models.TrackKind) error {
	return httperrors.NewBadRequestError(fmt.Sprintf("unknown track kind %q", kind))
}
