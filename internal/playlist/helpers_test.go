package playlist

import (
	"testing"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/models"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func mustTask(t *testing.T, kind models.TaskKind, id string) *models.Task {
	t.Helper()
	task, err := models.NewTask(kind, id, struct{}{}, 1)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}
