package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/logging"
	"github.com/ftcpit/scoutsync/internal/remote"
	"github.com/ftcpit/scoutsync/internal/scout/models"
	"github.com/ftcpit/scoutsync/internal/scout/repositories/cache"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeQueue struct {
	mu        sync.Mutex
	entries   []*models.QueueEntry
	snapshots map[string]string
}

func newFakeQueue(entries ...*models.QueueEntry) *fakeQueue {
	return &fakeQueue{entries: entries, snapshots: make(map[string]string)}
}

func (q *fakeQueue) ListPending(ctx context.Context) ([]*models.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var pending []*models.QueueEntry
	for _, e := range q.entries {
		if !e.Synced {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (q *fakeQueue) MarkSynced(ctx context.Context, localID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e.LocalID == localID {
			e.Synced = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (q *fakeQueue) SaveSnapshot(ctx context.Context, kind cache.Kind, eventCode string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.snapshots[string(kind)+"/"+eventCode] = string(data)
	return nil
}

func (q *fakeQueue) pendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries {
		if !e.Synced {
			n++
		}
	}
	return n
}

type fakeRemote struct {
	mu        sync.Mutex
	upserts   []remote.Record
	failKeys  map[string]error
	pingErr   error
	snapshots map[string][]byte
	started   chan struct{}
	release   chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{failKeys: make(map[string]error), snapshots: make(map[string][]byte)}
}

func (r *fakeRemote) Upsert(ctx context.Context, rec remote.Record) error {
	if r.started != nil {
		r.started <- struct{}{}
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failKeys[rec.ConflictKey()]; ok {
		return err
	}
	r.upserts = append(r.upserts, rec)
	return nil
}

func (r *fakeRemote) FetchSnapshot(ctx context.Context, collection, eventCode string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.snapshots[collection]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot unavailable", common.ErrTransport)
	}
	return data, nil
}

func (r *fakeRemote) Ping(ctx context.Context) error { return r.pingErr }
func (r *fakeRemote) Close() error                   { return nil }

func entry(localID string, team int) *models.QueueEntry {
	return &models.QueueEntry{
		LocalID:     localID,
		EventCode:   "CAOC",
		TeamNumber:  team,
		MatchNumber: 1,
		SubmitterID: "scout-1",
		Metrics:     fmt.Sprintf(`{"event_code":"CAOC","team_number":%d,"match_number":1,"submitter_id":"scout-1"}`, team),
	}
}

func TestSyncService_DrainEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue(entry("a", 118), entry("b", 254), entry("c", 5119))
	r := newFakeRemote()
	s := NewSyncService(q, r, discardLogger())

	res, err := s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Attempted: 3, Synced: 3}, res)
	assert.Equal(t, 0, q.pendingCount())
	assert.Len(t, r.upserts, 3)

	res, err = s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{}, res)
}

func TestSyncService_FailedEntryStaysQueued(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue(entry("a", 118), entry("b", 254), entry("c", 5119))
	r := newFakeRemote()
	r.failKeys["CAOC/254/1/scout-1"] = fmt.Errorf("%w: connection refused", common.ErrTransport)
	s := NewSyncService(q, r, discardLogger())

	res, err := s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Attempted: 3, Synced: 2, Failed: 1}, res)
	assert.Equal(t, 1, q.pendingCount())

	delete(r.failKeys, "CAOC/254/1/scout-1")
	res, err = s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Attempted: 1, Synced: 1}, res)
	assert.Equal(t, 0, q.pendingCount())
}

func TestSyncService_ConflictCountsAsSynced(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue(entry("a", 118))
	r := newFakeRemote()
	r.failKeys["CAOC/118/1/scout-1"] = fmt.Errorf("%w: merged remotely", common.ErrRemoteConflict)
	s := NewSyncService(q, r, discardLogger())

	res, err := s.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Attempted: 1, Synced: 1}, res)
	assert.Equal(t, 0, q.pendingCount())
}

func TestSyncService_SingleFlight(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue(entry("a", 118))
	r := newFakeRemote()
	r.started = make(chan struct{}, 1)
	r.release = make(chan struct{})
	s := NewSyncService(q, r, discardLogger())

	done := make(chan error, 1)
	go func() {
		_, err := s.Drain(ctx)
		done <- err
	}()

	<-r.started
	_, err := s.Drain(ctx)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	close(r.release)
	require.NoError(t, <-done)
}

func TestSyncService_OnlineTransitionTriggersDrain(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue(entry("a", 118))
	r := newFakeRemote()
	r.pingErr = errors.New("unreachable")
	s := NewSyncService(q, r, discardLogger())

	s.checkOnlineStatus(ctx)
	assert.Equal(t, ModeOffline, s.Mode())
	assert.Equal(t, 1, q.pendingCount())

	r.pingErr = nil
	s.checkOnlineStatus(ctx)
	assert.Equal(t, ModeOnline, s.Mode())
	assert.Equal(t, 0, q.pendingCount())

	// steady online state does not trigger another pass
	s.checkOnlineStatus(ctx)
	assert.Len(t, r.upserts, 1)
}

func TestSyncService_TrackedEventRefreshesOnTransition(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue()
	r := newFakeRemote()
	r.snapshots[remote.CollectionSchedule] = []byte(`[{"match_number":1}]`)
	r.snapshots[remote.CollectionEntries] = []byte(`[]`)
	s := NewSyncService(q, r, discardLogger())
	s.TrackEvent("CAOC")

	s.checkOnlineStatus(ctx)
	assert.Equal(t, ModeOnline, s.Mode())
	assert.Equal(t, `[{"match_number":1}]`, q.snapshots[string(cache.KindSchedule)+"/CAOC"])
}

func TestSyncService_RefreshSnapshots(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue()
	r := newFakeRemote()
	r.snapshots[remote.CollectionSchedule] = []byte(`[{"match_number":1}]`)
	r.snapshots[remote.CollectionEntries] = []byte(`[{"team_number":118}]`)
	s := NewSyncService(q, r, discardLogger())

	require.NoError(t, s.RefreshSnapshots(ctx, "CAOC"))
	assert.Equal(t, `[{"match_number":1}]`, q.snapshots[string(cache.KindSchedule)+"/CAOC"])
	assert.Equal(t, `[{"team_number":118}]`, q.snapshots[string(cache.KindEntries)+"/CAOC"])
}

func TestSyncService_RefreshSnapshotsPartialFailure(t *testing.T) {
	ctx := context.Background()
	q := newFakeQueue()
	r := newFakeRemote()
	r.snapshots[remote.CollectionEntries] = []byte(`[{"team_number":118}]`)
	s := NewSyncService(q, r, discardLogger())

	err := s.RefreshSnapshots(ctx, "CAOC")
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, `[{"team_number":118}]`, q.snapshots[string(cache.KindEntries)+"/CAOC"])
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "offline", ModeOffline.String())
	assert.Equal(t, "online", ModeOnline.String())
}
