package remote

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/dbx"
)

// PostgresStore writes straight into the authoritative database, for
// deployments that have a DSN instead of a REST gateway.
type PostgresStore struct {
	db dbx.DBTX

	// closer is the owned handle when the store opened its own connection.
	closer *sql.DB
}

// NewPostgresStore binds a store to an existing DBTX.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgresStore opens a pgx-backed connection for dsn.
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &PostgresStore{db: db, closer: db}, nil
}

// Upsert inserts or overwrites the row for the record's natural key.
// Last write wins; that is the accepted conflict policy at the remote.
func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO scouting_entries (event_code, team_number, match_number, submitter_id, data, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (event_code, team_number, match_number, submitter_id)
		DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now();
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.EventCode, rec.TeamNumber, rec.MatchNumber, rec.SubmitterID, []byte(rec.Data))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// FetchSnapshot aggregates a collection for one event into a single JSON
// document, matching the shape the REST gateway serves.
func (s *PostgresStore) FetchSnapshot(ctx context.Context, collection, eventCode string) ([]byte, error) {
	var query string
	switch collection {
	case CollectionEntries:
		query = `SELECT COALESCE(json_agg(t), '[]') FROM (
			SELECT event_code, team_number, match_number, submitter_id, data
			FROM scouting_entries WHERE event_code=$1) t`
	case CollectionSchedule:
		query = `SELECT COALESCE(json_agg(t), '[]') FROM (
			SELECT event_code, match_number, red_alliance, blue_alliance, scheduled_at
			FROM match_schedule WHERE event_code=$1) t`
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", common.ErrValidation, collection)
	}

	var snapshot []byte
	if err := s.db.QueryRowContext(ctx, query, eventCode).Scan(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return snapshot, nil
}

// Ping verifies database reachability.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.closer != nil {
		if err := s.closer.PingContext(ctx); err != nil {
			return fmt.Errorf("%w: %v", common.ErrTransport, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `SELECT 1`); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
