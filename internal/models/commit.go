package models

type TrackKind string

const (
	VideoTrackKind    TrackKind = "video"
	AudioTrackKind    TrackKind = "audio"
	SubtitleTrackKind TrackKind = "subtitle"
)

func ParseTrackKind(s string) (TrackKind, bool) {
	switch k := TrackKind(s); k {
	case VideoTrackKind, AudioTrackKind, SubtitleTrackKind:
		return k, true
	}
	return "", false
}

// TrackUpdate overwrites the supplied fields of a track's staged metadata. Fields that do not apply to the
// track's kind are ignored.
type TrackUpdate struct {
	Name       *string `json:"name" validate:"omitempty,lte=255"`
	IsDefault  *bool   `json:"isDefault"`
	DurationMs *int64  `json:"durationMs" validate:"omitempty,gte=0"`
	Width      *int    `json:"width" validate:"omitempty,gte=0"`
	Height     *int    `json:"height" validate:"omitempty,gte=0"`
}

func (u *TrackUpdate) ApplyVideo(m *VideoMetadata) {
	if u.DurationMs != nil {
		m.DurationMs = *u.DurationMs
	}
	if u.Width != nil {
		m.Width = *u.Width
	}
	if u.Height != nil {
		m.Height = *u.Height
	}
}

func (u *TrackUpdate) ApplyAudio(m *AudioMetadata) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.IsDefault != nil {
		m.IsDefault = *u.IsDefault
	}
}

func (u *TrackUpdate) ApplySubtitle(m *SubtitleMetadata) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.IsDefault != nil {
		m.IsDefault = *u.IsDefault
	}
}

// TrackStaging is one element of a staging snapshot. A nil Staging clears the track's pending change.
type TrackStaging[M any] struct {
	Dirname string          `json:"trackDirname" validate:"required"`
	Staging *StagingData[M] `json:"staging"`
}

// StagingSnapshot is the full ordered staging state a client proposes for every track list of a container.
type StagingSnapshot struct {
	VideoTracks    []TrackStaging[VideoMetadata]    `json:"videoTracks" validate:"dive"`
	AudioTracks    []TrackStaging[AudioMetadata]    `json:"audioTracks" validate:"dive"`
	SubtitleTracks []TrackStaging[SubtitleMetadata] `json:"subtitleTracks" validate:"dive"`
}

// ValidationCode names a commit rule a container failed. Callers get it as data in a CommitResult;
// it implements error so it can abort the enclosing transaction.
type ValidationCode string

const (
	NoVideoTrack               ValidationCode = "NO_VIDEO_TRACK"
	MoreThanOneVideoTracks     ValidationCode = "MORE_THAN_ONE_VIDEO_TRACKS"
	NoDefaultAudioTrack        ValidationCode = "NO_DEFAULT_AUDIO_TRACK"
	MoreThanOneDefaultAudio    ValidationCode = "MORE_THAN_ONE_DEFAULT_AUDIO_TRACKS"
	TooManyAudioTracks         ValidationCode = "TOO_MANY_AUDIO_TRACKS"
	NoDefaultSubtitleTrack     ValidationCode = "NO_DEFAULT_SUBTITLE_TRACK"
	MoreThanOneDefaultSubtitle ValidationCode = "MORE_THAN_ONE_DEFAULT_SUBTITLE_TRACKS"
	TooManySubtitleTracks      ValidationCode = "TOO_MANY_SUBTITLE_TRACKS"
	TrackMismatch              ValidationCode = "TRACK_MISMATCH"
)

func (c ValidationCode) Error() string {
	return string(c)
}

// CommitResult answers commit and save-staging requests. On failure nothing was persisted.
type CommitResult struct {
	Success   bool            `json:"success"`
	Error     ValidationCode  `json:"error,omitempty"`
	Container *VideoContainer `json:"container,omitempty"`
}
