// Package formatter runs the external transcoding executable that turns a raw upload into track directories.
package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
)

// ErrNonRetryable marks failures that another attempt cannot fix, such as an unreadable source file.
var ErrNonRetryable = errors.New("non-retryable error")

// exitNonRetryable is the exit status the executable uses for a source it rejects.
const exitNonRetryable = 2

type Request struct {
	ContainerID  string
	Kind         models.ProcessingKind
	SourceBucket string
	SourceKey    string
	// OutputPrefix is the publish store prefix under which the executable creates track directories.
	OutputPrefix string
}

type ProducedTrack[M any] struct {
	Dirname    string `json:"dirname"`
	Metadata   M      `json:"metadata"`
	TotalBytes int64  `json:"totalBytes"`
}

// Report is printed by the executable on stdout as a single JSON document.
type Report struct {
	VideoTracks    []ProducedTrack[models.VideoMetadata]    `json:"videoTracks"`
	AudioTracks    []ProducedTrack[models.AudioMetadata]    `json:"audioTracks"`
	SubtitleTracks []ProducedTrack[models.SubtitleMetadata] `json:"subtitleTracks"`
	Error          string                                   `json:"error,omitempty"`
}

// Dirs lists every produced track directory name.
func (r *Report) Dirs() []string {
	dirs := make([]string, 0, len(r.VideoTracks)+len(r.AudioTracks)+len(r.SubtitleTracks))
	for _, t := range r.VideoTracks {
		dirs = append(dirs, t.Dirname)
	}
	for _, t := range r.AudioTracks {
		dirs = append(dirs, t.Dirname)
	}
	for _, t := range r.SubtitleTracks {
		dirs = append(dirs, t.Dirname)
	}
	return dirs
}

type Formatter interface {
	Format(ctx context.Context, req Request) (*Report, error)
}

type execFormatter struct {
	executable string
	args       []string
	timeout    time.Duration
	logger     logger.Logger
}

func NewExecFormatter(executable string, args []string, timeout time.Duration, logger logger.Logger) Formatter {
	return &execFormatter{executable: executable, args: args, timeout: timeout, logger: logger}
}

func (f *execFormatter) Format(ctx context.Context, req Request) (*Report, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	args := append(append([]string{}, f.args...),
		"--container-id", req.ContainerID,
		"--kind", string(req.Kind),
		"--source", fmt.Sprintf("%s/%s", req.SourceBucket, req.SourceKey),
		"--output-prefix", req.OutputPrefix,
	)
	cmd := exec.CommandContext(ctx, f.executable, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	f.logger.Infof("formatter %s for %s finished in %s", req.Kind, req.SourceKey, time.Since(start))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitNonRetryable {
			return nil, errors.Join(ErrNonRetryable, fmt.Errorf("formatter rejected %s: %s", req.SourceKey, tail(stderr.String())))
		}
		return nil, fmt.Errorf("formatter failed on %s: %w: %s", req.SourceKey, err, tail(stderr.String()))
	}

	report := &Report{}
	if err = json.Unmarshal(stdout.Bytes(), report); err != nil {
		return nil, fmt.Errorf("failed to decode formatter report: %w", err)
	}
	if report.Error != "" {
		return nil, errors.Join(ErrNonRetryable, errors.New(report.Error))
	}
	return report, nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	const max = 512
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}
