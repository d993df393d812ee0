// Package playlist holds the convergence state machine of a container's master playlist.
//
// A commit always moves the playlist to WritingToFile{version+1}. The writer moves it on to Syncing once the
// new file exists, and the syncer to Synced once the file is published. Every transition carries the files
// and directories still awaiting deletion, so a superseded write never leaks storage.
package playlist

import (
	"context"
	"strconv"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
)

// InFlight names the ledger row driving a non-terminal playlist state.
type InFlight struct {
	Kind    models.TaskKind
	Version int64
}

func InFlightTask(p models.MasterPlaylist) (InFlight, bool) {
	switch v := p.(type) {
	case models.PlaylistSyncing:
		return InFlight{Kind: models.TaskPlaylistSyncing, Version: v.Version}, true
	case models.PlaylistWritingToFile:
		return InFlight{Kind: models.TaskPlaylistWriting, Version: v.Version}, true
	}
	return InFlight{}, false
}

// Filename is the name of the playlist file written for version.
func Filename(version int64) string {
	return strconv.FormatInt(version, 10)
}

// Advance returns the state a commit moves p to.
func Advance(p models.MasterPlaylist) models.PlaylistWritingToFile {
	switch v := p.(type) {
	case models.PlaylistSynced:
		files := []string{}
		if v.Filename != "" {
			files = append(files, v.Filename)
		}
		return models.PlaylistWritingToFile{Version: v.Version + 1, FilesToDelete: files, DirsToDelete: []string{}}
	case models.PlaylistSyncing:
		return models.PlaylistWritingToFile{
			Version:       v.Version + 1,
			FilesToDelete: append(copyOf(v.FilesToDelete), v.Filename),
			DirsToDelete:  copyOf(v.DirsToDelete),
		}
	case models.PlaylistWritingToFile:
		return models.PlaylistWritingToFile{
			Version:       v.Version + 1,
			FilesToDelete: copyOf(v.FilesToDelete),
			DirsToDelete:  copyOf(v.DirsToDelete),
		}
	}
	return models.PlaylistWritingToFile{Version: p.PlaylistVersion() + 1, FilesToDelete: []string{}, DirsToDelete: []string{}}
}

// Written moves WritingToFile{version} to Syncing once filename has been written.
// It reports false when p is no longer that state.
func Written(p models.MasterPlaylist, version int64, filename string) (models.PlaylistSyncing, bool) {
	w, ok := p.(models.PlaylistWritingToFile)
	if !ok || w.Version != version {
		return models.PlaylistSyncing{}, false
	}
	return models.PlaylistSyncing{
		Version:       w.Version,
		Filename:      filename,
		FilesToDelete: copyOf(w.FilesToDelete),
		DirsToDelete:  copyOf(w.DirsToDelete),
	}, true
}

// Published moves Syncing{version} to Synced and hands back what it no longer references.
func Published(p models.MasterPlaylist, version int64) (models.PlaylistSynced, []string, []string, bool) {
	s, ok := p.(models.PlaylistSyncing)
	if !ok || s.Version != version {
		return models.PlaylistSynced{}, nil, nil, false
	}
	return models.PlaylistSynced{Version: s.Version, Filename: s.Filename}, copyOf(s.FilesToDelete), copyOf(s.DirsToDelete), true
}

// References lists every playlist file and track directory the state still points at.
func References(p models.MasterPlaylist) (files []string, dirs []string) {
	switch v := p.(type) {
	case models.PlaylistSynced:
		if v.Filename != "" {
			files = append(files, v.Filename)
		}
	case models.PlaylistSyncing:
		files = append(copyOf(v.FilesToDelete), v.Filename)
		dirs = copyOf(v.DirsToDelete)
	case models.PlaylistWritingToFile:
		files = copyOf(v.FilesToDelete)
		dirs = copyOf(v.DirsToDelete)
	}
	return files, dirs
}

// CommitTx advances c's playlist, queues retiredDirs for deletion with it and swaps the in-flight task
// for a writing task at the new version.
func CommitTx(ctx context.Context, tx store.Tx, c *models.VideoContainer, retiredDirs []string, nowMs int64) error {
	if inflight, ok := InFlightTask(c.MasterPlaylist); ok {
		if err := tx.DeleteTask(ctx, inflight.Kind, models.PlaylistTaskID(c.ContainerID, inflight.Version)); err != nil {
			return err
		}
	}
	next := Advance(c.MasterPlaylist)
	next.DirsToDelete = append(next.DirsToDelete, retiredDirs...)
	c.MasterPlaylist = next
	return tasks.SchedulePlaylist(ctx, tx, models.TaskPlaylistWriting, c.ContainerID, next.Version, nowMs)
}

// RetireTx schedules deletion of everything the playlist references and drops its in-flight task.
// Track directories are retired together with their usage.
func RetireTx(ctx context.Context, tx store.Tx, c *models.VideoContainer, nowMs int64) error {
	if inflight, ok := InFlightTask(c.MasterPlaylist); ok {
		if err := tx.DeleteTask(ctx, inflight.Kind, models.PlaylistTaskID(c.ContainerID, inflight.Version)); err != nil {
			return err
		}
	}
	files, dirs := References(c.MasterPlaylist)
	for _, f := range files {
		if err := tasks.ScheduleDeleteKey(ctx, tx, c.ObjectKey(f), nowMs); err != nil {
			return err
		}
	}
	for _, d := range dirs {
		if err := tasks.RetireTrackDir(ctx, tx, c.TrackDir(d), c.AccountID, nowMs); err != nil {
			return err
		}
	}
	return tasks.ScheduleDeleteKey(ctx, tx, c.PublishedPlaylistKey(), nowMs)
}

func copyOf(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
