package queue

import (
	"context"

	"github.com/ftcpit/scoutsync/internal/scout/models"
)

// Repository describes storage operations for the device-local offline queue.
// Implementations are backed by the client's SQLite database.
type Repository interface {
	// Insert adds a new entry. Re-inserting the same local id is a no-op
	// (dedupe by local record id).
	Insert(ctx context.Context, e *models.QueueEntry) error

	// ListPending returns entries awaiting a remote write, in insertion
	// order. Ordering is a convenience, not a contract.
	ListPending(ctx context.Context) ([]*models.QueueEntry, error)

	// ListByEvent returns all entries for one event, newest first.
	ListByEvent(ctx context.Context, eventCode string) ([]*models.QueueEntry, error)

	// MarkSynced flips one entry to synced after a confirmed remote write.
	MarkSynced(ctx context.Context, localID string) error

	// DeleteSyncedBefore removes synced entries created before cutoff
	// (unix milliseconds) and reports how many were removed. Pending
	// entries are never touched.
	DeleteSyncedBefore(ctx context.Context, cutoff int64) (int64, error)

	// Counts returns total and pending entry counts.
	Counts(ctx context.Context) (total int, pending int, err error)
}
