package usecase

import (
	"fmt"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
)

func findTrack[M any](tracks []*models.Track[M], dirname string) (*models.Track[M], error) {
	for _, t := range tracks {
		if t.Dirname == dirname {
			return t, nil
		}
	}
	return nil, httperrors.NewNotFoundError(fmt.Sprintf("track %s", dirname))
}

// updateTrack stages new metadata for a track, seeded from what is already staged or committed.
func updateTrack[M any](tracks []*models.Track[M], dirname string, apply func(*M)) error {
	t, err := findTrack(tracks, dirname)
	if err != nil {
		return err
	}
	var md M
	if staged, ok := t.StagedAdd(); ok {
		md = staged
	} else if t.Committed != nil {
		md = *t.Committed
	}
	apply(&md)
	t.Staging = models.StageAdd[M]{Metadata: md}
	return nil
}

func deleteTrack[M any](tracks []*models.Track[M], dirname string) error {
	t, err := findTrack(tracks, dirname)
	if err != nil {
		return err
	}
	if t.Committed == nil {
		return httperrors.NewBadRequestError(fmt.Sprintf("track %s was never committed, drop its staging instead", dirname))
	}
	t.Staging = models.StageDelete[M]{}
	return nil
}

// dropStaging clears a track's pending change. A track that was never committed disappears and its
// dirname is returned as orphaned.
func dropStaging[M any](tracks []*models.Track[M], dirname string) ([]*models.Track[M], []string, error) {
	t, err := findTrack(tracks, dirname)
	if err != nil {
		return nil, nil, err
	}
	if t.Staging == nil {
		return nil, nil, httperrors.NewBadRequestError(fmt.Sprintf("track %s has no staging data", dirname))
	}
	t.Staging = nil
	kept, orphans := pruneTracks(tracks)
	return kept, orphans, nil
}

// pruneTracks removes tracks holding neither committed nor staged data.
func pruneTracks[M any](tracks []*models.Track[M]) ([]*models.Track[M], []string) {
	kept := make([]*models.Track[M], 0, len(tracks))
	var orphans []string
	for _, t := range tracks {
		if t.Retained() {
			kept = append(kept, t)
			continue
		}
		orphans = append(orphans, t.Dirname)
	}
	return kept, orphans
}

// commitStaging folds staged metadata into committed metadata. Tracks staged for deletion leave the list
// and their dirnames are returned, to be deleted once no published playlist references them.
func commitStaging[M any](tracks []*models.Track[M]) ([]*models.Track[M], []string) {
	kept := make([]*models.Track[M], 0, len(tracks))
	retired := []string{}
	for _, t := range tracks {
		switch s := t.Staging.(type) {
		case models.StageDelete[M]:
			t.Committed = nil
		case models.StageAdd[M]:
			md := s.Metadata
			t.Committed = &md
		}
		t.Staging = nil
		if t.Committed == nil {
			retired = append(retired, t.Dirname)
			continue
		}
		kept = append(kept, t)
	}
	return kept, retired
}

func matchesSnapshot[M any](tracks []*models.Track[M], proposed []models.TrackStaging[M]) bool {
	if len(tracks) != len(proposed) {
		return false
	}
	for i, t := range tracks {
		if t.Dirname != proposed[i].Dirname {
			return false
		}
	}
	return true
}

// applySnapshot replaces the staging of every track with the proposed one. The caller has already checked
// the snapshot lines up with tracks.
func applySnapshot[M any](tracks []*models.Track[M], proposed []models.TrackStaging[M]) error {
	for i, t := range tracks {
		s, err := proposed[i].Staging.Staging()
		if err != nil {
			return httperrors.NewBadRequestError(fmt.Sprintf("track %s: %v", t.Dirname, err))
		}
		if _, ok := s.(models.StageDelete[M]); ok && t.Committed == nil {
			return httperrors.NewBadRequestError(fmt.Sprintf("track %s was never committed and cannot be deleted", t.Dirname))
		}
		t.Staging = s
	}
	return nil
}
