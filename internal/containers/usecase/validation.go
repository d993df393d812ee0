package usecase

import (
	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/models"
)

// validateCommitted checks the committed track sets of c. An empty code means c may be published.
func validateCommitted(c *models.VideoContainer, cfg config.ContainerConfig) models.ValidationCode {
	switch {
	case len(c.VideoTracks) == 0:
		return models.NoVideoTrack
	case len(c.VideoTracks) > 1:
		return models.MoreThanOneVideoTracks
	}

	if len(c.AudioTracks) > 0 {
		switch countDefaults(c.AudioTracks, func(m models.AudioMetadata) bool { return m.IsDefault }) {
		case 0:
			return models.NoDefaultAudioTrack
		case 1:
		default:
			return models.MoreThanOneDefaultAudio
		}
	}
	if cfg.MaxAudioTracks > 0 && len(c.AudioTracks) > cfg.MaxAudioTracks {
		return models.TooManyAudioTracks
	}

	if cfg.RequireDefaultSubtitle && len(c.SubtitleTracks) > 0 {
		switch countDefaults(c.SubtitleTracks, func(m models.SubtitleMetadata) bool { return m.IsDefault }) {
		case 0:
			return models.NoDefaultSubtitleTrack
		case 1:
		default:
			return models.MoreThanOneDefaultSubtitle
		}
	}
	if cfg.MaxSubtitleTracks > 0 && len(c.SubtitleTracks) > cfg.MaxSubtitleTracks {
		return models.TooManySubtitleTracks
	}
	return ""
}

func countDefaults[M any](tracks []*models.Track[M], isDefault func(M) bool) int {
	n := 0
	for _, t := range tracks {
		if t.Committed != nil && isDefault(*t.Committed) {
			n++
		}
	}
	return n
}
