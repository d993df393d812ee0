package models

import "errors"

type ProcessingKind string

const (
	MediaProcessing    ProcessingKind = "media"
	SubtitleProcessing ProcessingKind = "subtitle"
)

// ResumableUploadState is the primary store session backing an in-progress upload.
// SessionURL is empty until a session has been created.
type ResumableUploadState struct {
	StorageFilename string `json:"storageFilename"`
	SessionURL      string `json:"sessionUrl,omitempty"`
	ContentLength   int64  `json:"contentLength"`
	ContentType     string `json:"contentType"`
	Checksum        string `json:"checksum,omitempty"`
}

// ProcessingState is the single active pipeline of a container, Uploading or Formatting.
// A nil ProcessingState means nothing is in flight.
type ProcessingState interface {
	ProcessingKind() ProcessingKind
	UploadFilename() string
	isProcessingState()
}

type Uploading struct {
	Kind   ProcessingKind       `json:"kind"`
	Upload ResumableUploadState `json:"upload"`
}

type Formatting struct {
	Kind            ProcessingKind `json:"kind"`
	StorageFilename string         `json:"storageFilename"`
	ContentLength   int64          `json:"contentLength"`
	StartedTimeMs   int64          `json:"startedTimeMs"`
}

func (u Uploading) ProcessingKind() ProcessingKind  { return u.Kind }
func (f Formatting) ProcessingKind() ProcessingKind { return f.Kind }
func (u Uploading) UploadFilename() string          { return u.Upload.StorageFilename }
func (f Formatting) UploadFilename() string         { return f.StorageFilename }
func (Uploading) isProcessingState()                {}
func (Formatting) isProcessingState()               {}

type processingJSON struct {
	Uploading  *Uploading  `json:"uploading,omitempty"`
	Formatting *Formatting `json:"formatting,omitempty"`
}

func encodeProcessing(p ProcessingState) *processingJSON {
	switch v := p.(type) {
	case Uploading:
		return &processingJSON{Uploading: &v}
	case Formatting:
		return &processingJSON{Formatting: &v}
	}
	return nil
}

func (p *processingJSON) state() (ProcessingState, error) {
	if p == nil {
		return nil, nil
	}
	switch {
	case p.Uploading != nil && p.Formatting == nil:
		return *p.Uploading, nil
	case p.Formatting != nil && p.Uploading == nil:
		return *p.Formatting, nil
	}
	return nil, errors.New("processing must be exactly one of uploading or formatting")
}

// FailureRecord remembers why a pipeline was abandoned.
type FailureRecord struct {
	Kind            ProcessingKind `json:"kind"`
	StorageFilename string         `json:"storageFilename"`
	Reason          string         `json:"reason"`
	TimeMs          int64          `json:"timeMs"`
}

const MaxFailureRecords = 10
