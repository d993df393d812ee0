package uploads

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
)

type UseCase interface {
	StartUpload(ctx context.Context, containerID string, kind models.ProcessingKind, input *models.StartUploadInput) (*models.UploadSession, error)
	CompleteUpload(ctx context.Context, containerID string, kind models.ProcessingKind) (*models.VideoContainer, error)
	Cancel(ctx context.Context, containerID string, kind models.ProcessingKind) (*models.VideoContainer, error)
}

// KindPolicy holds what differs between the media and the subtitle pipeline.
type KindPolicy interface {
	Kind() models.ProcessingKind
	// Accept rejects a declared upload the pipeline cannot take.
	Accept(input *models.StartUploadInput) error
}
