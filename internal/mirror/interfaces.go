// Package mirror keeps the device-local copy of the ledger in step with the
// server of record.
//
// Every UI-facing read and write goes through [Mirror], which persists to the
// local SQLite store first and schedules a debounced push of the touched keys
// to the server. The server is the source of truth for durability; the mirror
// is the source of truth for latency.
package mirror

import (
	"context"
	"encoding/json"
	"time"
)

// CancelFunc stops a pending scheduled call. Calling it after the function
// has already fired is a no-op.
type CancelFunc func()

// Scheduler abstracts one-shot timer scheduling so the debounce machinery can
// be driven deterministically in tests.
type Scheduler interface {
	// ScheduleAfter arranges for fn to run once after d elapses and returns a
	// cancel handle.
	ScheduleAfter(d time.Duration, fn func()) CancelFunc
}

// Store is the read/write surface the UI layer sees. All mutations are local
// first; synchronization with the server happens in the background.
type Store interface {
	// Get returns the raw JSON value stored under key locally.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set writes the value locally and marks the key for the next flush
	// cycle, unless the key is sync-excluded.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes the key locally and marks it for server deletion.
	// Deleting a protected collection requires a currently valid delete
	// intent; without one Delete fails and the local value stays intact.
	Delete(ctx context.Context, key string) error

	// Keys lists every key currently present in the local mirror.
	Keys(ctx context.Context) ([]string, error)
}

type timeScheduler struct{}

func (timeScheduler) ScheduleAfter(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// NewTimeScheduler returns the production [Scheduler] backed by
// [time.AfterFunc].
func NewTimeScheduler() Scheduler {
	return timeScheduler{}
}
