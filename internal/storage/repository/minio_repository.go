package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/minio/minio-go/v7"
)

type publishRepository struct {
	client *minio.Client
	bucket string
}

func NewPublishRepository(client *minio.Client, bucket string) storage.PublishStore {
	return &publishRepository{client: client, bucket: bucket}
}

func (p *publishRepository) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (p *publishRepository) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	_, err := p.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: p.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: p.bucket, Object: srcKey},
	)
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", srcKey, dstKey, err)
	}
	return nil
}

func (p *publishRepository) DeleteObject(ctx context.Context, key string) error {
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (p *publishRepository) DeletePrefix(ctx context.Context, prefix string) error {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	objects := p.client.ListObjects(listCtx, p.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	toRemove := make(chan minio.ObjectInfo)
	listErr := make(chan error, 1)
	go func() {
		defer close(toRemove)
		for obj := range objects {
			if obj.Err != nil {
				listErr <- obj.Err
				return
			}
			select {
			case toRemove <- obj:
			case <-listCtx.Done():
				return
			}
		}
	}()
	var firstErr error
	for rmErr := range p.client.RemoveObjects(ctx, p.bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove %s: %w", rmErr.ObjectName, rmErr.Err)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	select {
	case err := <-listErr:
		return fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	default:
	}
	return nil
}
