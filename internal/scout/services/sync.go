// Package services holds the scout client's background machinery: the drain
// engine that pushes queued entries to the remote store and the connectivity
// watcher that triggers it.
package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/logging"
	"github.com/ftcpit/scoutsync/internal/remote"
	"github.com/ftcpit/scoutsync/internal/scout/models"
	"github.com/ftcpit/scoutsync/internal/scout/repositories/cache"
)

// ErrSyncInProgress is returned by Drain when another drain pass is already
// running. Callers triggered by timers or connectivity events should treat it
// as a no-op.
var ErrSyncInProgress = errors.New("sync already in progress")

// Mode reflects the client's last observed connectivity state.
type Mode int

const (
	ModeOffline Mode = iota
	ModeOnline
)

func (m Mode) String() string {
	if m == ModeOnline {
		return "online"
	}
	return "offline"
}

// Queue is the slice of the local queue the drain engine needs.
type Queue interface {
	ListPending(ctx context.Context) ([]*models.QueueEntry, error)
	MarkSynced(ctx context.Context, localID string) error
	SaveSnapshot(ctx context.Context, kind cache.Kind, eventCode string, data []byte) error
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Attempted int
	Synced    int
	Failed    int
}

// SyncService drains the offline queue into the remote store. At most one
// drain pass runs at a time; entries that fail stay queued for the next pass.
type SyncService struct {
	queue     Queue
	remote    remote.Store
	logger    logging.Logger
	eventCode string
	draining  atomic.Bool
	mode      atomic.Int32
}

func NewSyncService(queue Queue, remote remote.Store, logger logging.Logger) *SyncService {
	return &SyncService{queue: queue, remote: remote, logger: logger}
}

// TrackEvent makes connectivity transitions also refresh the reference-data
// snapshots for the event. Without it only the queue is drained.
func (s *SyncService) TrackEvent(eventCode string) {
	s.eventCode = eventCode
}

// Mode returns the last connectivity state observed by the watcher.
func (s *SyncService) Mode() Mode {
	return Mode(s.mode.Load())
}

// Drain pushes every pending entry to the remote store, marking each one
// synced immediately after its write is confirmed. A natural-key conflict
// means the record already reached the store by another path and counts as
// synced. Failures are isolated per entry and never abort the pass.
func (s *SyncService) Drain(ctx context.Context) (DrainResult, error) {
	if !s.draining.CompareAndSwap(false, true) {
		return DrainResult{}, ErrSyncInProgress
	}
	defer s.draining.Store(false)

	var res DrainResult

	pending, err := s.queue.ListPending(ctx)
	if err != nil {
		return res, err
	}

	res.Attempted = len(pending)
	for _, entry := range pending {
		if err := s.drainOne(ctx, entry); err != nil {
			res.Failed++
			s.logger.Warn(ctx, "failed to sync entry", "local_id", entry.LocalID, "error", err)
			continue
		}
		res.Synced++
	}

	if res.Attempted > 0 {
		s.logger.Info(ctx, "drain finished",
			"attempted", res.Attempted, "synced", res.Synced, "failed", res.Failed)
	}
	return res, nil
}

func (s *SyncService) drainOne(ctx context.Context, entry *models.QueueEntry) error {
	err := s.remote.Upsert(ctx, entry.RemoteRecord())
	if err != nil && !errors.Is(err, common.ErrRemoteConflict) {
		return err
	}
	return s.queue.MarkSynced(ctx, entry.LocalID)
}

// tryDrain is Drain for fire-and-forget triggers: an in-progress pass is not
// an error, anything else is logged.
func (s *SyncService) tryDrain(ctx context.Context) {
	if _, err := s.Drain(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		s.logger.Error(ctx, "drain pass failed", "error", err)
	}
}

// StartPeriodicDrain runs a drain pass every interval until ctx is cancelled.
func (s *SyncService) StartPeriodicDrain(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tryDrain(ctx)
		}
	}
}

// StartOnlineStatusWatcher pings the remote store every interval and flips
// the connectivity mode. A transition from offline to online triggers an
// immediate drain pass so buffered entries do not wait for the next tick.
func (s *SyncService) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkOnlineStatus(ctx)
		}
	}
}

func (s *SyncService) checkOnlineStatus(ctx context.Context) {
	next := ModeOnline
	if err := s.remote.Ping(ctx); err != nil {
		next = ModeOffline
	}

	prev := Mode(s.mode.Swap(int32(next)))
	if prev == next {
		return
	}

	s.logger.Info(ctx, "connectivity changed", "mode", next.String())
	if next == ModeOnline {
		s.tryDrain(ctx)
		if s.eventCode != "" {
			_ = s.RefreshSnapshots(ctx, s.eventCode)
		}
	}
}

// RefreshSnapshots pulls fresh reference data for the event and overwrites
// the local caches. Each snapshot is refreshed independently so one failure
// does not lose the other.
func (s *SyncService) RefreshSnapshots(ctx context.Context, eventCode string) error {
	pulls := []struct {
		collection string
		kind       cache.Kind
	}{
		{remote.CollectionSchedule, cache.KindSchedule},
		{remote.CollectionEntries, cache.KindEntries},
	}

	var firstErr error
	for _, p := range pulls {
		data, err := s.remote.FetchSnapshot(ctx, p.collection, eventCode)
		if err != nil {
			s.logger.Warn(ctx, "snapshot refresh failed", "collection", p.collection, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.queue.SaveSnapshot(ctx, p.kind, eventCode, data); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
