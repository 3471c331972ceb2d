package queue

import (
	"context"
	"fmt"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/dbx"
	"github.com/ftcpit/scoutsync/internal/scout/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert adds a queue entry. A duplicate local id is silently ignored so a
// repeated enqueue of the same submission cannot fail or fork.
func (r *SQLiteRepository) Insert(ctx context.Context, e *models.QueueEntry) error {
	query := ` INSERT INTO queue_entries
			(local_id, event_code, team_number, match_number, submitter_id, metrics, synced, created_at)
			values (?, ?, ?, ?, ?, ?, 0, ?)
			ON CONFLICT(local_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		e.LocalID, e.EventCode, e.TeamNumber, e.MatchNumber, e.SubmitterID, e.Metrics, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to insert queue entry: %v", common.ErrStorage, err)
	}
	return nil
}

// ListPending returns unsynced entries oldest first.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.QueueEntry, error) {
	query := `select local_id, event_code, team_number, match_number, submitter_id, metrics, synced, created_at
		from queue_entries where synced=0 order by created_at asc`
	return r.selectEntries(ctx, query)
}

// ListByEvent returns every entry for an event, newest first.
func (r *SQLiteRepository) ListByEvent(ctx context.Context, eventCode string) ([]*models.QueueEntry, error) {
	query := `select local_id, event_code, team_number, match_number, submitter_id, metrics, synced, created_at
		from queue_entries where event_code=? order by created_at desc`
	return r.selectEntries(ctx, query, eventCode)
}

func (r *SQLiteRepository) selectEntries(ctx context.Context, query string, args ...any) ([]*models.QueueEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select queue entries: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []*models.QueueEntry
	for rows.Next() {
		entry := &models.QueueEntry{}
		if err := rows.Scan(&entry.LocalID, &entry.EventCode, &entry.TeamNumber, &entry.MatchNumber,
			&entry.SubmitterID, &entry.Metrics, &entry.Synced, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return result, nil
}

// MarkSynced flips one entry to synced. It expects exactly one row affected:
// marking an unknown entry is a programming error worth surfacing.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID string) error {
	query := `update queue_entries set synced=1 where local_id=?`
	res, err := r.db.ExecContext(ctx, query, localID)
	if err != nil {
		return fmt.Errorf("%w: failed to mark entry synced: %v", common.ErrStorage, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", common.ErrStorage, err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: queue entry %s", common.ErrNotFound, localID)
	}
	return nil
}

// DeleteSyncedBefore prunes confirmed entries older than cutoff.
func (r *SQLiteRepository) DeleteSyncedBefore(ctx context.Context, cutoff int64) (int64, error) {
	query := `delete from queue_entries where synced=1 and created_at < ?`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune queue: %v", common.ErrStorage, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get rows affected: %v", common.ErrStorage, err)
	}
	return ra, nil
}

// Counts returns total and pending entry counts.
func (r *SQLiteRepository) Counts(ctx context.Context) (int, int, error) {
	query := `select count(*), coalesce(sum(case when synced=0 then 1 else 0 end), 0) from queue_entries`
	var total, pending int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &pending); err != nil {
		return 0, 0, fmt.Errorf("%w: failed to count queue entries: %v", common.ErrStorage, err)
	}
	return total, pending, nil
}
