// Package models defines the scouting client's device-local types.
package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ftcpit/scoutsync/internal/remote"
)

// QueueEntry is one buffered scouting submission. LocalID identifies the
// submission on this device only; the remote store never sees it. The natural
// conflict key columns are what the remote deduplicates on.
type QueueEntry struct {
	LocalID     string
	EventCode   string
	TeamNumber  int
	MatchNumber int
	SubmitterID string
	Metrics     string // full serialized scouting field set
	Synced      bool
	CreatedAt   int64 // unix milliseconds
}

// NewLocalID builds a device-unique id: enqueue timestamp plus a random
// suffix. Never reused, stable for the lifetime of the entry.
func NewLocalID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// NewQueueEntry validates the payload's conflict key and wraps it into a
// queue entry ready for insertion.
func NewQueueEntry(payload []byte, now time.Time) (*QueueEntry, error) {
	rec, err := remote.ParseRecord(payload)
	if err != nil {
		return nil, err
	}
	return &QueueEntry{
		LocalID:     NewLocalID(now),
		EventCode:   rec.EventCode,
		TeamNumber:  rec.TeamNumber,
		MatchNumber: rec.MatchNumber,
		SubmitterID: rec.SubmitterID,
		Metrics:     string(rec.Data),
		CreatedAt:   now.UnixMilli(),
	}, nil
}

// RemoteRecord converts the entry back into the record shape pushed to the
// authoritative store.
func (e *QueueEntry) RemoteRecord() remote.Record {
	return remote.Record{
		EventCode:   e.EventCode,
		TeamNumber:  e.TeamNumber,
		MatchNumber: e.MatchNumber,
		SubmitterID: e.SubmitterID,
		Data:        json.RawMessage(e.Metrics),
	}
}

// Snapshot is a last-known-good copy of remote reference data for one event.
// Purely a read cache: overwritten wholesale on every successful refresh.
type Snapshot struct {
	EventCode string
	Data      string
	CachedAt  int64
}
