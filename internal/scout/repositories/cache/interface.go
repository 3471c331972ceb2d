package cache

import (
	"context"

	"github.com/ftcpit/scoutsync/internal/scout/models"
)

// Kind selects which snapshot table a call addresses.
type Kind string

const (
	KindSchedule Kind = "cached_schedules"
	KindEntries  Kind = "cached_entries"
)

// Repository stores last-known-good snapshots of remote reference data for
// offline display. Snapshots carry no durability guarantee: each successful
// refresh overwrites the previous one wholesale.
type Repository interface {
	// Save overwrites the snapshot for an event.
	Save(ctx context.Context, kind Kind, s *models.Snapshot) error

	// Get returns the snapshot for an event, or common.ErrNotFound.
	Get(ctx context.Context, kind Kind, eventCode string) (*models.Snapshot, error)
}
