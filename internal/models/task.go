package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type TaskKind string

const (
	TaskFormatting       TaskKind = "FORMATTING"
	TaskDeleteKey        TaskKind = "DELETE_KEY"
	TaskDeleteUploadFile TaskKind = "DELETE_UPLOAD_FILE"
	TaskPlaylistWriting  TaskKind = "PLAYLIST_WRITING"
	TaskPlaylistSyncing  TaskKind = "PLAYLIST_SYNCING"
	TaskUsageStart       TaskKind = "USAGE_START"
	TaskUsageEnd         TaskKind = "USAGE_END"
)

var AllTaskKinds = []TaskKind{
	TaskFormatting,
	TaskDeleteKey,
	TaskDeleteUploadFile,
	TaskPlaylistWriting,
	TaskPlaylistSyncing,
	TaskUsageStart,
	TaskUsageEnd,
}

func ParseTaskKind(s string) (TaskKind, bool) {
	for _, k := range AllTaskKinds {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// Task is one row of the ledger. The (Kind, ID) pair is the natural key.
// ExecutionTimeMs is the earliest time the next attempt may run.
type Task struct {
	Kind            TaskKind `json:"kind" db:"kind"`
	ID              string   `json:"id" db:"task_id"`
	Payload         JSONB    `json:"payload" db:"payload"`
	RetryCount      int      `json:"retryCount" db:"retry_count"`
	ExecutionTimeMs int64    `json:"executionTimeMs" db:"execution_time_ms"`
	CreatedTimeMs   int64    `json:"createdTimeMs" db:"created_time_ms"`
}

// NewTask builds a task that is due immediately.
func NewTask(kind TaskKind, id string, payload interface{}, nowMs int64) (*Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	return &Task{
		Kind:            kind,
		ID:              id,
		Payload:         data,
		ExecutionTimeMs: nowMs,
		CreatedTimeMs:   nowMs,
	}, nil
}

func (t *Task) Decode(v interface{}) error {
	if len(t.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload of %s: %w", t.Kind, t.ID, err)
	}
	return nil
}

// JSONB holds raw JSON for jsonb columns. The pgx stdlib driver hands jsonb back as a string.
type JSONB []byte

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return []byte(j), nil
}

func (j *JSONB) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
	return nil
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

type FormattingPayload struct {
	ContainerID     string         `json:"containerId"`
	StorageFilename string         `json:"storageFilename"`
	Kind            ProcessingKind `json:"kind"`
}

type DeleteUploadFilePayload struct {
	SessionURL string `json:"sessionUrl,omitempty"`
	AccountID  string `json:"accountId"`
	RecordEnd  bool   `json:"recordEnd"`
}

type PlaylistPayload struct {
	ContainerID string `json:"containerId"`
	Version     int64  `json:"version"`
}

type UsagePayload struct {
	AccountID  string `json:"accountId"`
	TotalBytes int64  `json:"totalBytes"`
	TimeMs     int64  `json:"timeMs"`
}

type DeleteKeyPayload struct {
	AccountID string `json:"accountId,omitempty"`
}

func FormattingTaskID(containerID, filename string) string {
	return containerID + "/" + filename
}

func PlaylistTaskID(containerID string, version int64) string {
	return fmt.Sprintf("%s/%d", containerID, version)
}

// IsPrefixKey reports whether a DELETE_KEY id names a directory.
func IsPrefixKey(key string) bool {
	return strings.HasSuffix(key, "/")
}

// StorageFile is the index row of a raw upload object in the primary store.
type StorageFile struct {
	Name          string `json:"name" db:"name"`
	AccountID     string `json:"accountId" db:"account_id"`
	ContainerID   string `json:"containerId" db:"container_id"`
	CreatedTimeMs int64  `json:"createdTimeMs" db:"created_time_ms"`
}
