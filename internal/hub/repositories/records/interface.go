package records

import (
	"context"

	"github.com/ftcpit/scoutsync/internal/hub/models"
)

// Repository describes storage operations for scouting records. Implementations
// are backed by the hub's local SQLite database.
type Repository interface {
	// Upsert writes or overwrites the record for id. It always resets the
	// synced flag and preserves created_at for an existing row.
	Upsert(ctx context.Context, id, payload string, now int64) error

	// ListUnsynced returns all records whose synced flag is unset, in
	// arbitrary order.
	ListUnsynced(ctx context.Context) ([]models.Record, error)

	// MarkSynced sets the synced flag for each id. Unknown ids are ignored.
	// Batch atomicity is the caller's concern (run inside a transaction).
	MarkSynced(ctx context.Context, ids []string) error

	// ListAll returns every record ordered by created_at descending.
	ListAll(ctx context.Context) ([]models.Record, error)

	// Counts returns the total record count and the unsynced count.
	Counts(ctx context.Context) (total int, unsynced int, err error)
}
