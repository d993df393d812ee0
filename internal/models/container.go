package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const PublishedPlaylistName = "master.json"

// VideoContainer is the aggregate root: one video track, any number of audio and subtitle tracks
// and the master playlist that publishes them.
type VideoContainer struct {
	ContainerID            string
	AccountID              string
	StorageRootPrefix      string
	MasterPlaylist         MasterPlaylist
	Processing             ProcessingState
	VideoTracks            []*VideoTrack
	AudioTracks            []*AudioTrack
	SubtitleTracks         []*SubtitleTrack
	LastProcessingFailures []FailureRecord
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func NewVideoContainer(containerID, accountID string, now time.Time) *VideoContainer {
	return &VideoContainer{
		ContainerID:       containerID,
		AccountID:         accountID,
		StorageRootPrefix: fmt.Sprintf("%s/%s/", accountID, containerID),
		MasterPlaylist:    PlaylistSynced{Version: 0},
		VideoTracks:       []*VideoTrack{},
		AudioTracks:       []*AudioTrack{},
		SubtitleTracks:    []*SubtitleTrack{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ObjectKey is the publish store key of a file directly under the container root.
func (c *VideoContainer) ObjectKey(filename string) string {
	return c.StorageRootPrefix + filename
}

// TrackDir is the publish store prefix of a track directory, always ending in "/".
func (c *VideoContainer) TrackDir(dirname string) string {
	return c.StorageRootPrefix + dirname + "/"
}

func (c *VideoContainer) PublishedPlaylistKey() string {
	return c.ObjectKey(PublishedPlaylistName)
}

// TrackDirs lists the directory of every track regardless of staging state.
func (c *VideoContainer) TrackDirs() []string {
	dirs := make([]string, 0, len(c.VideoTracks)+len(c.AudioTracks)+len(c.SubtitleTracks))
	for _, t := range c.VideoTracks {
		dirs = append(dirs, t.Dirname)
	}
	for _, t := range c.AudioTracks {
		dirs = append(dirs, t.Dirname)
	}
	for _, t := range c.SubtitleTracks {
		dirs = append(dirs, t.Dirname)
	}
	return dirs
}

func (c *VideoContainer) AddFailure(rec FailureRecord) {
	c.LastProcessingFailures = append(c.LastProcessingFailures, rec)
	if n := len(c.LastProcessingFailures); n > MaxFailureRecords {
		c.LastProcessingFailures = c.LastProcessingFailures[n-MaxFailureRecords:]
	}
}

// Clone returns a deep copy.
func (c *VideoContainer) Clone() *VideoContainer {
	data, err := json.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("clone container %s: %v", c.ContainerID, err))
	}
	var out VideoContainer
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("clone container %s: %v", c.ContainerID, err))
	}
	return &out
}

type containerJSON struct {
	ContainerID            string           `json:"containerId"`
	AccountID              string           `json:"accountId"`
	StorageRootPrefix      string           `json:"storageRootPrefix"`
	MasterPlaylist         playlistJSON     `json:"masterPlaylist"`
	Processing             *processingJSON  `json:"processing,omitempty"`
	VideoTracks            []*VideoTrack    `json:"videoTracks"`
	AudioTracks            []*AudioTrack    `json:"audioTracks"`
	SubtitleTracks         []*SubtitleTrack `json:"subtitleTracks"`
	LastProcessingFailures []FailureRecord  `json:"lastProcessingFailures"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

func (c VideoContainer) MarshalJSON() ([]byte, error) {
	return json.Marshal(containerJSON{
		ContainerID:            c.ContainerID,
		AccountID:              c.AccountID,
		StorageRootPrefix:      c.StorageRootPrefix,
		MasterPlaylist:         marshalPlaylist(c.MasterPlaylist),
		Processing:             encodeProcessing(c.Processing),
		VideoTracks:            nonNil(c.VideoTracks),
		AudioTracks:            nonNil(c.AudioTracks),
		SubtitleTracks:         nonNil(c.SubtitleTracks),
		LastProcessingFailures: nonNil(c.LastProcessingFailures),
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	})
}

func (c *VideoContainer) UnmarshalJSON(data []byte) error {
	var raw containerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	playlist, err := raw.MasterPlaylist.state()
	if err != nil {
		return err
	}
	processing, err := raw.Processing.state()
	if err != nil {
		return err
	}
	*c = VideoContainer{
		ContainerID:            raw.ContainerID,
		AccountID:              raw.AccountID,
		StorageRootPrefix:      raw.StorageRootPrefix,
		MasterPlaylist:         playlist,
		Processing:             processing,
		VideoTracks:            nonNil(raw.VideoTracks),
		AudioTracks:            nonNil(raw.AudioTracks),
		SubtitleTracks:         nonNil(raw.SubtitleTracks),
		LastProcessingFailures: nonNil(raw.LastProcessingFailures),
		CreatedAt:              raw.CreatedAt,
		UpdatedAt:              raw.UpdatedAt,
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
