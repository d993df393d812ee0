package storage

import (
	"context"

	"github.com/amankumarsingh77/video-containers/internal/resumable"
)

// PrimaryStore holds raw uploads. Uploads go through resumable sessions.
type PrimaryStore interface {
	Bucket() string
	CreateSession(ctx context.Context, key, contentType string, contentLength int64) (string, error)
	CheckProgress(ctx context.Context, sessionURL string, contentLength int64) (resumable.Progress, error)
	Cancel(ctx context.Context, sessionURL string) error
	// DeleteAndCancel cancels sessionURL when set, then deletes key. Missing objects count as deleted.
	DeleteAndCancel(ctx context.Context, key, sessionURL string) error
}

// PublishStore holds track directories and playlist files.
type PublishStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	CopyObject(ctx context.Context, srcKey, dstKey string) error
	DeleteObject(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
