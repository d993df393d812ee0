package repository

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/video-containers/internal/resumable"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type primaryRepository struct {
	client    *s3.Client
	resumable *resumable.Client
	bucket    string
}

func NewPrimaryRepository(client *s3.Client, resumableClient *resumable.Client, bucket string) storage.PrimaryStore {
	return &primaryRepository{
		client:    client,
		resumable: resumableClient,
		bucket:    bucket,
	}
}

func (p *primaryRepository) Bucket() string {
	return p.bucket
}

func (p *primaryRepository) CreateSession(ctx context.Context, key, contentType string, contentLength int64) (string, error) {
	return p.resumable.CreateSession(ctx, p.bucket, key, contentType, contentLength)
}

func (p *primaryRepository) CheckProgress(ctx context.Context, sessionURL string, contentLength int64) (resumable.Progress, error) {
	return p.resumable.CheckProgress(ctx, sessionURL, contentLength)
}

func (p *primaryRepository) Cancel(ctx context.Context, sessionURL string) error {
	return p.resumable.Cancel(ctx, sessionURL)
}

func (p *primaryRepository) DeleteAndCancel(ctx context.Context, key, sessionURL string) error {
	if err := p.resumable.Cancel(ctx, sessionURL); err != nil {
		return err
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isClientError(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func isClientError(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		return status >= 400 && status < 500
	}
	return false
}
