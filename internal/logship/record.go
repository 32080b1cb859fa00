// Package logship is an asynchronous best-effort sink for structured log
// records. Producers enqueue without blocking; a single worker forwards
// records to a remote transport. Under sustained overload the oldest queued
// records are dropped so the newest information always survives.
package logship

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is one structured log event. Level and Message are always present;
// the remaining fields are included in the wire payload only when set.
// Records are immutable once enqueued.
type Record struct {
	ID         string    `json:"id,omitempty"`
	Time       time.Time `json:"time"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Event      string    `json:"event,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Model      string    `json:"model,omitempty"`
	Path       string    `json:"path,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	ErrorType  string    `json:"error_type,omitempty"`
}

// NewRecord stamps a record with the current time and a fresh ULID.
func NewRecord(level, message string) Record {
	return Record{
		ID:      ulid.Make().String(),
		Time:    time.Now().UTC(),
		Level:   level,
		Message: message,
	}
}
