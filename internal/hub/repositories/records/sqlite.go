package records

import (
	"context"
	"fmt"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/dbx"
	"github.com/ftcpit/scoutsync/internal/hub/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts a record or overwrites the payload of an existing one.
// On conflict created_at is kept and synced drops back to 0: a re-submission
// may carry changed content and must be re-verified against the remote.
func (r *SQLiteRepository) Upsert(ctx context.Context, id, payload string, now int64) error {
	query := ` INSERT INTO records (id, payload, synced, created_at)
			values (?, ?, 0, ?)
			ON CONFLICT(id) DO UPDATE SET payload = excluded.payload,
				synced = 0
	`
	_, err := r.db.ExecContext(ctx, query, id, payload, now)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert record: %v", common.ErrStorage, err)
	}
	return nil
}

// ListUnsynced returns all records not yet confirmed by the remote store.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Record, error) {
	query := `select id, payload, synced, created_at from records where synced=0`
	return r.selectRecords(ctx, query)
}

// ListAll returns every record, newest first. Used for export/debug only.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.Record, error) {
	query := `select id, payload, synced, created_at from records order by created_at desc`
	return r.selectRecords(ctx, query)
}

func (r *SQLiteRepository) selectRecords(ctx context.Context, query string) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select records: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var item models.Record
		if err := rows.Scan(&item.ID, &item.Payload, &item.Synced, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return result, nil
}

// MarkSynced flips the synced flag for each id. Ids without a matching row are
// silently ignored. Run inside a transaction when batch atomicity is required.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	query := `update records set synced=1 where id=?`
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("%w: failed to mark record %s synced: %v", common.ErrStorage, id, err)
		}
	}
	return nil
}

// Counts returns the total and unsynced record counts.
func (r *SQLiteRepository) Counts(ctx context.Context) (int, int, error) {
	query := `select count(*), coalesce(sum(case when synced=0 then 1 else 0 end), 0) from records`
	row := r.db.QueryRowContext(ctx, query)

	var total, unsynced int
	if err := row.Scan(&total, &unsynced); err != nil {
		return 0, 0, fmt.Errorf("%w: failed to count records: %v", common.ErrStorage, err)
	}
	return total, unsynced, nil
}
