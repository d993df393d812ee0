package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/playlist"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

const manifestContentType = "application/json"

// NewPlaylistWritingProcessor renders the committed tracks of a container into a new versioned playlist file.
func NewPlaylistWritingProcessor(st store.Store, publish storage.PublishStore, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.PlaylistPayload](models.TaskPlaylistWriting, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, p models.PlaylistPayload) (tasks.Outcome, error) {
			c, err := st.GetContainer(ctx, p.ContainerID)
			if err != nil {
				if httperrors.IsNotFound(err) {
					return tasks.Outcome{}, nil
				}
				return tasks.Outcome{}, err
			}
			if w, ok := c.MasterPlaylist.(models.PlaylistWritingToFile); !ok || w.Version != p.Version {
				logger.Debugf("PlaylistWriting - %s superseded by version %d", task.ID, c.MasterPlaylist.PlaylistVersion())
				return tasks.Outcome{}, nil
			}

			filename := playlist.Filename(p.Version)
			key := c.ObjectKey(filename)
			data, err := json.Marshal(models.BuildManifest(c, p.Version))
			if err != nil {
				return tasks.Outcome{}, fmt.Errorf("failed to render playlist %s: %w", task.ID, err)
			}
			if err = publish.PutObject(ctx, key, data, manifestContentType); err != nil {
				return tasks.Outcome{}, err
			}

			discard := discardPlaylistFile(p.ContainerID, key, filename, now)
			return tasks.Outcome{
				Apply: func(ctx context.Context, tx store.Tx) error {
					cur, err := tx.GetContainer(ctx, p.ContainerID)
					if err != nil {
						if httperrors.IsNotFound(err) {
							return discard(ctx, tx)
						}
						return err
					}
					syncing, ok := playlist.Written(cur.MasterPlaylist, p.Version, filename)
					if !ok {
						return discard(ctx, tx)
					}
					cur.MasterPlaylist = syncing
					if err = tx.UpdateContainer(ctx, cur); err != nil {
						return err
					}
					return tasks.SchedulePlaylist(ctx, tx, models.TaskPlaylistSyncing, cur.ContainerID, syncing.Version, now().UnixMilli())
				},
				Abandon: discard,
			}, nil
		})
}

// discardPlaylistFile deletes a written playlist file unless the container's playlist already points at it.
func discardPlaylistFile(containerID, key, filename string, now func() time.Time) tasks.Finalizer {
	return func(ctx context.Context, tx store.Tx) error {
		c, err := tx.GetContainer(ctx, containerID)
		switch {
		case err == nil:
			files, _ := playlist.References(c.MasterPlaylist)
			for _, f := range files {
				if f == filename {
					return nil
				}
			}
		case !httperrors.IsNotFound(err):
			return err
		}
		return tasks.ScheduleDeleteKey(ctx, tx, key, now().UnixMilli())
	}
}

// NewPlaylistSyncingProcessor publishes a written playlist file under the container's master playlist key.
func NewPlaylistSyncingProcessor(st store.Store, publish storage.PublishStore, backoff tasks.Backoff, now func() time.Time, logger logger.Logger) tasks.Processor {
	return tasks.NewRunner[models.PlaylistPayload](models.TaskPlaylistSyncing, st, backoff, now, logger,
		func(ctx context.Context, task *models.Task, p models.PlaylistPayload) (tasks.Outcome, error) {
			c, err := st.GetContainer(ctx, p.ContainerID)
			if err != nil {
				if httperrors.IsNotFound(err) {
					return tasks.Outcome{}, nil
				}
				return tasks.Outcome{}, err
			}
			s, ok := c.MasterPlaylist.(models.PlaylistSyncing)
			if !ok || s.Version != p.Version {
				logger.Debugf("PlaylistSyncing - %s superseded by version %d", task.ID, c.MasterPlaylist.PlaylistVersion())
				return tasks.Outcome{}, nil
			}
			if err = publish.CopyObject(ctx, c.ObjectKey(s.Filename), c.PublishedPlaylistKey()); err != nil {
				return tasks.Outcome{}, err
			}

			return tasks.Outcome{
				Apply: func(ctx context.Context, tx store.Tx) error {
					nowMs := now().UnixMilli()
					cur, err := tx.GetContainer(ctx, p.ContainerID)
					if err != nil {
						if httperrors.IsNotFound(err) {
							return nil
						}
						return err
					}
					synced, files, dirs, ok := playlist.Published(cur.MasterPlaylist, p.Version)
					if !ok {
						return republishIfOverwritten(ctx, tx, cur, p.Version, nowMs)
					}
					cur.MasterPlaylist = synced
					if err = tx.UpdateContainer(ctx, cur); err != nil {
						return err
					}
					for _, f := range files {
						if err = tasks.ScheduleDeleteKey(ctx, tx, cur.ObjectKey(f), nowMs); err != nil {
							return err
						}
					}
					for _, d := range dirs {
						if err = tasks.RetireTrackDir(ctx, tx, cur.TrackDir(d), cur.AccountID, nowMs); err != nil {
							return err
						}
					}
					return nil
				},
				Abandon: func(ctx context.Context, tx store.Tx) error {
					cur, err := tx.GetContainer(ctx, p.ContainerID)
					if err != nil {
						if httperrors.IsNotFound(err) {
							return nil
						}
						return err
					}
					return republishIfOverwritten(ctx, tx, cur, p.Version, now().UnixMilli())
				},
			}, nil
		})
}

// republishIfOverwritten handles a stale copy that landed after a newer version was already published,
// whether or not the stale task row survived: the newer file is promoted again so the published key
// converges on it.
func republishIfOverwritten(ctx context.Context, tx store.Tx, c *models.VideoContainer, staleVersion int64, nowMs int64) error {
	synced, ok := c.MasterPlaylist.(models.PlaylistSynced)
	if !ok || synced.Version <= staleVersion || synced.Filename == "" {
		return nil
	}
	c.MasterPlaylist = models.PlaylistSyncing{
		Version:       synced.Version,
		Filename:      synced.Filename,
		FilesToDelete: []string{},
		DirsToDelete:  []string{},
	}
	if err := tx.UpdateContainer(ctx, c); err != nil {
		return err
	}
	return tasks.SchedulePlaylist(ctx, tx, models.TaskPlaylistSyncing, c.ContainerID, synced.Version, nowMs)
}
