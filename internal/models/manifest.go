package models

// MasterManifest is the document published as a container's master playlist. It only lists committed tracks.
type MasterManifest struct {
	ContainerID string          `json:"containerId"`
	Version     int64           `json:"version"`
	Video       *ManifestVideo  `json:"video,omitempty"`
	Audio       []ManifestTrack `json:"audio"`
	Subtitles   []ManifestTrack `json:"subtitles"`
}

type ManifestVideo struct {
	Dir string `json:"dir"`
	VideoMetadata
}

type ManifestTrack struct {
	Dir       string `json:"dir"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

func BuildManifest(c *VideoContainer, version int64) MasterManifest {
	m := MasterManifest{
		ContainerID: c.ContainerID,
		Version:     version,
		Audio:       []ManifestTrack{},
		Subtitles:   []ManifestTrack{},
	}
	for _, t := range c.VideoTracks {
		if t.Committed != nil && m.Video == nil {
			m.Video = &ManifestVideo{Dir: t.Dirname + "/", VideoMetadata: *t.Committed}
		}
	}
	for _, t := range c.AudioTracks {
		if t.Committed != nil {
			m.Audio = append(m.Audio, ManifestTrack{Dir: t.Dirname + "/", Name: t.Committed.Name, IsDefault: t.Committed.IsDefault})
		}
	}
	for _, t := range c.SubtitleTracks {
		if t.Committed != nil {
			m.Subtitles = append(m.Subtitles, ManifestTrack{Dir: t.Dirname + "/", Name: t.Committed.Name, IsDefault: t.Committed.IsDefault})
		}
	}
	return m
}
