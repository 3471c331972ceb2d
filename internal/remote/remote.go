// Package remote describes the authoritative remote store that both sync
// paths (client offline queue and hub reconciliation) converge into. Writes
// are upserts on the natural conflict key, so either path produces identical
// remote state for the same logical submission.
package remote

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/ftcpit/scoutsync/internal/common"
)

// Record is one scouting submission addressed by its natural conflict key.
// Data carries the full serialized field set; the key columns are duplicated
// out of it so the remote can resolve conflicts without parsing the document.
type Record struct {
	EventCode   string          `json:"event_code"`
	TeamNumber  int             `json:"team_number"`
	MatchNumber int             `json:"match_number"`
	SubmitterID string          `json:"submitter_id"`
	Data        json.RawMessage `json:"data"`
}

// ConflictKey renders the natural key for logs and error messages.
func (r Record) ConflictKey() string {
	return fmt.Sprintf("%s/%d/%d/%s", r.EventCode, r.TeamNumber, r.MatchNumber, r.SubmitterID)
}

// ParseRecord extracts the natural conflict key from a raw scouting payload.
// The payload itself is preserved untouched in Data. Incomplete keys are a
// validation error: such a record can never be upserted safely.
func ParseRecord(payload []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: payload is not a JSON object: %v", common.ErrValidation, err)
	}
	rec.Data = append(json.RawMessage(nil), payload...)

	if rec.EventCode == "" || rec.SubmitterID == "" || rec.TeamNumber <= 0 {
		return Record{}, fmt.Errorf("%w: payload is missing conflict key fields (event_code, team_number, submitter_id)", common.ErrValidation)
	}
	return rec, nil
}

// Store is the write/read surface of the authoritative remote store.
type Store interface {
	// Upsert writes rec keyed on the natural conflict key. Re-delivery of
	// the same logical record must not create a duplicate. A conflict the
	// remote resolved itself surfaces as common.ErrRemoteConflict.
	Upsert(ctx context.Context, rec Record) error

	// FetchSnapshot returns the raw serialized collection (schedule or
	// prior entries) for an event, for last-known-good offline display.
	FetchSnapshot(ctx context.Context, collection, eventCode string) ([]byte, error)

	// Ping reports whether the remote is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Collections exposed through FetchSnapshot.
const (
	CollectionEntries  = "scouting_entries"
	CollectionSchedule = "match_schedule"
)
