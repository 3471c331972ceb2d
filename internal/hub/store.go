// Package hub implements the local offline hub: a durable record store and
// the HTTP submission API that scouting devices use when the cloud is
// unreachable.
package hub

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/dbx"
	"github.com/ftcpit/scoutsync/internal/hub/migrations"
	"github.com/ftcpit/scoutsync/internal/hub/models"
	"github.com/ftcpit/scoutsync/internal/hub/repositories/records"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store owns the hub's record database. One instance per process; the
// underlying file must not be opened for writing by any other process.
type Store struct {
	db   *sql.DB
	repo records.Repository
	now  func() time.Time
}

// RunMigrations applies the embedded goose migrations for the record store.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenStore opens (creating if needed) the record database at dsn and applies
// migrations. The caller must Close the store on shutdown.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	// Single writer: all mutations are serialized on one connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migration failed: %v", common.ErrStorage, err)
	}

	return &Store{db: db, repo: records.NewSQLiteRepository(db), now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes or overwrites the record for id. Re-submitting an id is not
// an error: last write wins, created_at stays, synced resets.
func (s *Store) Upsert(ctx context.Context, id, payload string) error {
	if id == "" {
		return fmt.Errorf("%w: missing record id", common.ErrValidation)
	}
	if payload == "" {
		return fmt.Errorf("%w: missing record payload", common.ErrValidation)
	}
	return s.repo.Upsert(ctx, id, payload, s.now().UnixMilli())
}

// ListUnsynced returns all records awaiting reconciliation.
func (s *Store) ListUnsynced(ctx context.Context) ([]models.Record, error) {
	return s.repo.ListUnsynced(ctx)
}

// ListAll returns every record, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Record, error) {
	return s.repo.ListAll(ctx)
}

// MarkSynced flags the given records as accepted by the remote store. The
// whole batch is applied in one transaction: either every known id is marked
// or none is. Unknown ids are ignored, an empty batch is rejected.
func (s *Store) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: empty id list", common.ErrValidation)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return records.NewSQLiteRepository(tx).MarkSynced(ctx, ids)
	})
}

// Counts reports the total and unsynced record counts for health display.
func (s *Store) Counts(ctx context.Context) (total int, unsynced int, err error) {
	return s.repo.Counts(ctx)
}
