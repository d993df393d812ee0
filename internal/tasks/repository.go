package tasks

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
)

// WakeupRepository broadcasts newly inserted task kinds to idle workers.
type WakeupRepository interface {
	store.Notifier
	Subscribe(ctx context.Context) (<-chan models.TaskKind, error)
}
