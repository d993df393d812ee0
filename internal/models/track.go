package models

import (
	"encoding/json"
	"fmt"
)

type VideoMetadata struct {
	DurationMs int64 `json:"durationMs" validate:"gte=0"`
	Width      int   `json:"width" validate:"gte=0"`
	Height     int   `json:"height" validate:"gte=0"`
}

type AudioMetadata struct {
	Name      string `json:"name" validate:"lte=255"`
	IsDefault bool   `json:"isDefault"`
}

type SubtitleMetadata struct {
	Name      string `json:"name" validate:"lte=255"`
	IsDefault bool   `json:"isDefault"`
}

// Staging is a pending, uncommitted change to a track. It is either StageAdd or StageDelete.
type Staging[M any] interface {
	isStaging()
}

// StageAdd proposes Metadata as the track's next committed metadata.
type StageAdd[M any] struct {
	Metadata M
}

// StageDelete proposes removing a committed track.
type StageDelete[M any] struct{}

func (StageAdd[M]) isStaging()    {}
func (StageDelete[M]) isStaging() {}

// Track is one elementary stream of a container. Dirname is immutable and doubles as the storage path segment.
// A track is kept in its list only while Committed or Staging is set.
type Track[M any] struct {
	Dirname   string
	Committed *M
	Staging   Staging[M]
}

type VideoTrack = Track[VideoMetadata]
type AudioTrack = Track[AudioMetadata]
type SubtitleTrack = Track[SubtitleMetadata]

func (t *Track[M]) Retained() bool {
	return t.Committed != nil || t.Staging != nil
}

// StagedAdd returns the proposed metadata when the track is staged for add.
func (t *Track[M]) StagedAdd() (M, bool) {
	if add, ok := t.Staging.(StageAdd[M]); ok {
		return add.Metadata, true
	}
	var zero M
	return zero, false
}

func (t *Track[M]) StagedDelete() bool {
	_, ok := t.Staging.(StageDelete[M])
	return ok
}

// StagingData is the wire form of Staging: exactly one of ToAdd or ToDelete is set.
type StagingData[M any] struct {
	ToAdd    *M   `json:"toAdd,omitempty"`
	ToDelete bool `json:"toDelete,omitempty"`
}

func ToStagingData[M any](s Staging[M]) *StagingData[M] {
	switch v := s.(type) {
	case StageAdd[M]:
		m := v.Metadata
		return &StagingData[M]{ToAdd: &m}
	case StageDelete[M]:
		return &StagingData[M]{ToDelete: true}
	}
	return nil
}

// Staging converts the wire form back. A nil receiver means no staging.
func (d *StagingData[M]) Staging() (Staging[M], error) {
	if d == nil {
		return nil, nil
	}
	switch {
	case d.ToAdd != nil && d.ToDelete:
		return nil, fmt.Errorf("staging cannot both add and delete")
	case d.ToAdd != nil:
		return StageAdd[M]{Metadata: *d.ToAdd}, nil
	case d.ToDelete:
		return StageDelete[M]{}, nil
	}
	return nil, fmt.Errorf("staging must either add or delete")
}

type trackJSON[M any] struct {
	Dirname   string          `json:"trackDirname"`
	Committed *M              `json:"committed,omitempty"`
	Staging   *StagingData[M] `json:"staging,omitempty"`
}

func (t Track[M]) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackJSON[M]{
		Dirname:   t.Dirname,
		Committed: t.Committed,
		Staging:   ToStagingData[M](t.Staging),
	})
}

func (t *Track[M]) UnmarshalJSON(data []byte) error {
	var raw trackJSON[M]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	staging, err := raw.Staging.Staging()
	if err != nil {
		return fmt.Errorf("track %s: %w", raw.Dirname, err)
	}
	t.Dirname = raw.Dirname
	t.Committed = raw.Committed
	t.Staging = staging
	return nil
}
