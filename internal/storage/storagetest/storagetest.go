// Package storagetest provides in-memory object stores for tests.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/amankumarsingh77/video-containers/internal/resumable"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
)

type PublishStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	// Fail makes every call return this error when set.
	Fail error
}

func NewPublishStore() *PublishStore {
	return &PublishStore{Objects: make(map[string][]byte)}
}

func (s *PublishStore) PutObject(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.Objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *PublishStore) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	data, ok := s.Objects[key]
	if !ok {
		return nil, httperrors.NewNotFoundError(fmt.Sprintf("object %s", key))
	}
	return append([]byte(nil), data...), nil
}

func (s *PublishStore) CopyObject(_ context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	data, ok := s.Objects[srcKey]
	if !ok {
		return httperrors.NewNotFoundError(fmt.Sprintf("object %s", srcKey))
	}
	s.Objects[dstKey] = append([]byte(nil), data...)
	return nil
}

func (s *PublishStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	delete(s.Objects, key)
	return nil
}

func (s *PublishStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for k := range s.Objects {
		if strings.HasPrefix(k, prefix) {
			delete(s.Objects, k)
		}
	}
	return nil
}

func (s *PublishStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Session is one resumable upload known to PrimaryStore.
type Session struct {
	Key           string
	ContentType   string
	ContentLength int64
	Received      int64
	Cancelled     bool
}

type PrimaryStore struct {
	mu       sync.Mutex
	Sessions map[string]*Session
	Objects  map[string]bool
	Deleted  []string
	// ProgressErr is returned by CheckProgress when set.
	ProgressErr error
	next        int
}

func NewPrimaryStore() *PrimaryStore {
	return &PrimaryStore{
		Sessions: make(map[string]*Session),
		Objects:  make(map[string]bool),
	}
}

func (s *PrimaryStore) Bucket() string {
	return "uploads"
}

func (s *PrimaryStore) CreateSession(_ context.Context, key, contentType string, contentLength int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	url := fmt.Sprintf("https://primary.test/session/%d", s.next)
	s.Sessions[url] = &Session{Key: key, ContentType: contentType, ContentLength: contentLength}
	return url, nil
}

// Receive simulates the client uploading n bytes into a session.
func (s *PrimaryStore) Receive(sessionURL string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.Sessions[sessionURL]
	sess.Received += n
	if sess.Received >= sess.ContentLength {
		sess.Received = sess.ContentLength
		s.Objects[sess.Key] = true
	}
}

// Expire forgets a session, as the store does once it times out.
func (s *PrimaryStore) Expire(sessionURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, sessionURL)
}

func (s *PrimaryStore) CheckProgress(_ context.Context, sessionURL string, _ int64) (resumable.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ProgressErr != nil {
		return resumable.Progress{}, s.ProgressErr
	}
	sess, ok := s.Sessions[sessionURL]
	if !ok || sess.Cancelled {
		return resumable.Progress{}, nil
	}
	return resumable.Progress{URLValid: true, ByteOffset: sess.Received}, nil
}

func (s *PrimaryStore) Cancel(_ context.Context, sessionURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.Sessions[sessionURL]; ok {
		sess.Cancelled = true
	}
	return nil
}

func (s *PrimaryStore) DeleteAndCancel(ctx context.Context, key, sessionURL string) error {
	if err := s.Cancel(ctx, sessionURL); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}
