package cache

import (
	"context"
	"database/sql"
	"errors"
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

func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindSchedule, KindEntries:
		return string(kind), nil
	default:
		return "", fmt.Errorf("%w: unknown cache kind %q", common.ErrValidation, kind)
	}
}

// Save overwrites the snapshot for the event.
func (r *SQLiteRepository) Save(ctx context.Context, kind Kind, s *models.Snapshot) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(` INSERT INTO %s (event_code, data, cached_at)
			values (?, ?, ?)
			ON CONFLICT(event_code) DO UPDATE SET data = excluded.data,
				cached_at = excluded.cached_at
	`, table)
	if _, err := r.db.ExecContext(ctx, query, s.EventCode, s.Data, s.CachedAt); err != nil {
		return fmt.Errorf("%w: failed to save snapshot: %v", common.ErrStorage, err)
	}
	return nil
}

// Get returns the stored snapshot for the event.
func (r *SQLiteRepository) Get(ctx context.Context, kind Kind, eventCode string) (*models.Snapshot, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`select event_code, data, cached_at from %s where event_code=?`, table)
	row := r.db.QueryRowContext(ctx, query, eventCode)

	s := &models.Snapshot{}
	if err := row.Scan(&s.EventCode, &s.Data, &s.CachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s snapshot for %s", common.ErrNotFound, kind, eventCode)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return s, nil
}
