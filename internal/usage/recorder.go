package usage

import "context"

type EventType string

const (
	StorageStarted EventType = "storage_started"
	StorageEnded   EventType = "storage_ended"
)

// Event tells the billing service that storage under Name started or stopped counting against AccountID.
type Event struct {
	Type       EventType `json:"event"`
	AccountID  string    `json:"accountId"`
	Name       string    `json:"name"`
	TotalBytes int64     `json:"totalBytes"`
	TimeMs     int64     `json:"timeMs"`
}

type Recorder interface {
	Record(ctx context.Context, event Event) error
}
