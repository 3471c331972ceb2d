// Package scout implements the device-side client: a durable offline queue
// that buffers scouting submissions and drains them into the authoritative
// remote store once connectivity allows.
package scout

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/scout/migrations"
	"github.com/ftcpit/scoutsync/internal/scout/models"
	"github.com/ftcpit/scoutsync/internal/scout/repositories/cache"
	"github.com/ftcpit/scoutsync/internal/scout/repositories/queue"

	_ "modernc.org/sqlite"
)

// RetentionPeriod is how long confirmed entries are kept before the sweep
// removes them. Pending entries are exempt regardless of age.
const RetentionPeriod = 7 * 24 * time.Hour

// Queue owns the client's local database: the offline queue plus the
// reference-data snapshot caches. One instance per device profile.
type Queue struct {
	db    *sql.DB
	repo  queue.Repository
	cache cache.Repository
	now   func() time.Time
}

// RunMigrations applies the embedded goose migrations for the queue database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenQueue opens (creating if needed) the queue database at dsn and applies
// migrations. The caller must Close the queue on shutdown.
func OpenQueue(ctx context.Context, dsn string) (*Queue, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migration failed: %v", common.ErrStorage, err)
	}

	return &Queue{
		db:    db,
		repo:  queue.NewSQLiteRepository(db),
		cache: cache.NewSQLiteRepository(db),
		now:   time.Now,
	}, nil
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// Enqueue validates and buffers one submission. The entry survives process
// restarts and is delivered by the next drain pass.
func (q *Queue) Enqueue(ctx context.Context, payload []byte) (*models.QueueEntry, error) {
	entry, err := models.NewQueueEntry(payload, q.now())
	if err != nil {
		return nil, err
	}
	if err := q.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListPending returns entries awaiting delivery, oldest first.
func (q *Queue) ListPending(ctx context.Context) ([]*models.QueueEntry, error) {
	return q.repo.ListPending(ctx)
}

// ListByEvent returns all buffered entries for one event, newest first.
func (q *Queue) ListByEvent(ctx context.Context, eventCode string) ([]*models.QueueEntry, error) {
	return q.repo.ListByEvent(ctx, eventCode)
}

// MarkSynced records a confirmed remote write for one entry.
func (q *Queue) MarkSynced(ctx context.Context, localID string) error {
	return q.repo.MarkSynced(ctx, localID)
}

// Counts returns total and pending entry counts for status display.
func (q *Queue) Counts(ctx context.Context) (total int, pending int, err error) {
	return q.repo.Counts(ctx)
}

// Sweep removes synced entries older than the retention horizon, bounding
// local storage growth. Independent of draining.
func (q *Queue) Sweep(ctx context.Context) (int64, error) {
	cutoff := q.now().Add(-RetentionPeriod).UnixMilli()
	return q.repo.DeleteSyncedBefore(ctx, cutoff)
}

// SaveSnapshot overwrites a reference-data snapshot for offline display.
func (q *Queue) SaveSnapshot(ctx context.Context, kind cache.Kind, eventCode string, data []byte) error {
	return q.cache.Save(ctx, kind, &models.Snapshot{
		EventCode: eventCode,
		Data:      string(data),
		CachedAt:  q.now().UnixMilli(),
	})
}

// GetSnapshot returns the last-known-good snapshot for an event.
func (q *Queue) GetSnapshot(ctx context.Context, kind cache.Kind, eventCode string) (*models.Snapshot, error) {
	return q.cache.Get(ctx, kind, eventCode)
}
