// Package resumable speaks the session based resumable upload protocol of the primary object store.
package resumable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

const (
	StatusResumeIncomplete = 308

	headerUploadLength = "X-Upload-Content-Length"
	headerUploadType   = "X-Upload-Content-Type"
)

// Progress is the result of probing a session. ByteOffset is the number of bytes the store holds.
type Progress struct {
	URLValid   bool  `json:"urlValid"`
	ByteOffset int64 `json:"byteOffset"`
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     logger.Logger
	// progressBackOff builds the backoff used when a progress query hits a connection reset.
	progressBackOff func() backoff.BackOff
}

// NewClient wraps httpClient so that 308 responses are returned instead of followed.
func NewClient(httpClient *http.Client, endpoint, token string, logger logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	hc := *httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{
		httpClient: &hc,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		token:      token,
		logger:     logger,
		progressBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 200 * time.Millisecond
			bo.MaxInterval = 5 * time.Second
			return bo
		},
	}
}

// CreateSession initiates an upload of contentLength bytes to bucket/key and returns the session URL.
func (c *Client) CreateSession(ctx context.Context, bucket, key, contentType string, contentLength int64) (string, error) {
	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=resumable&name=%s",
		c.endpoint, url.PathEscape(bucket), url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build session request: %w", err)
	}
	req.ContentLength = 0
	req.Header.Set(headerUploadLength, strconv.FormatInt(contentLength, 10))
	if contentType != "" {
		req.Header.Set(headerUploadType, contentType)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create upload session: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to create upload session: unexpected status %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("failed to create upload session: missing Location header")
	}
	return location, nil
}

// CheckProgress asks the store how much of a session of contentLength bytes has been received.
// Connection resets are retried until ctx expires.
func (c *Client) CheckProgress(ctx context.Context, sessionURL string, contentLength int64) (Progress, error) {
	if sessionURL == "" {
		return Progress{}, nil
	}
	operation := func() (Progress, error) {
		p, err := c.queryProgress(ctx, sessionURL, contentLength)
		if err != nil && !errors.Is(err, syscall.ECONNRESET) {
			return Progress{}, backoff.Permanent(err)
		}
		if err != nil {
			c.logger.Warnf("CheckProgress - connection reset, retrying: %v", err)
		}
		return p, err
	}
	return backoff.Retry(ctx, operation, backoff.WithBackOff(c.progressBackOff()), backoff.WithMaxElapsedTime(0))
}

func (c *Client) queryProgress(ctx context.Context, sessionURL string, contentLength int64) (Progress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, nil)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to build progress request: %w", err)
	}
	req.ContentLength = 0
	req.Header.Set("Content-Range", fmt.Sprintf("bytes */%d", contentLength))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Progress{}, err
	}
	defer drain(resp)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return Progress{URLValid: true, ByteOffset: contentLength}, nil
	case resp.StatusCode == StatusResumeIncomplete:
		offset, err := parseRange(resp.Header.Get("Range"))
		if err != nil {
			return Progress{}, err
		}
		return Progress{URLValid: true, ByteOffset: offset}, nil
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return Progress{}, nil
	}
	return Progress{}, fmt.Errorf("failed to query upload session: unexpected status %d", resp.StatusCode)
}

// Cancel terminates a session. A session the store no longer knows is treated as cancelled.
func (c *Client) Cancel(ctx context.Context, sessionURL string) error {
	if sessionURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, sessionURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build cancel request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to cancel upload session: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("failed to cancel upload session: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// parseRange turns "bytes=0-N" into N+1. An empty header means nothing was received.
func parseRange(header string) (int64, error) {
	if header == "" {
		return 0, nil
	}
	bounds := strings.TrimPrefix(header, "bytes=")
	parts := strings.SplitN(bounds, "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed Range header %q", header)
	}
	last, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Range header %q: %w", header, err)
	}
	return last + 1, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
