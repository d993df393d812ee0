package containers

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
)

type UseCase interface {
	Create(ctx context.Context) (*models.VideoContainer, error)
	Get(ctx context.Context, containerID string) (*models.VideoContainer, error)
	Delete(ctx context.Context, containerID string) error

	UpdateTrack(ctx context.Context, containerID string, kind models.TrackKind, dirname string, update *models.TrackUpdate) (*models.VideoContainer, error)
	DeleteTrack(ctx context.Context, containerID string, kind models.TrackKind, dirname string) (*models.VideoContainer, error)
	DropStaging(ctx context.Context, containerID string, kind models.TrackKind, dirname string) (*models.VideoContainer, error)

	Commit(ctx context.Context, containerID string) (*models.CommitResult, error)
	SaveStaging(ctx context.Context, containerID string, snapshot *models.StagingSnapshot) (*models.CommitResult, error)
}
