package hub

import (
	"context"
	"testing"
	"time"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func unsyncedIDs(t *testing.T, s *Store) map[string]struct{} {
	t.Helper()
	recs, err := s.ListUnsynced(context.Background())
	require.NoError(t, err)
	ids := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		ids[r.ID] = struct{}{}
	}
	return ids
}

func TestUpsert_Idempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "r1", `{"team_number":118}`))
	require.NoError(t, s.Upsert(ctx, "r1", `{"team_number":118}`))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].ID)
}

func TestUpsert_LastWriteWinsAndResetsSynced(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "r1", `{"v":"a"}`))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	created := all[0].CreatedAt

	require.NoError(t, s.MarkSynced(ctx, []string{"r1"}))
	assert.Empty(t, unsyncedIDs(t, s))

	// re-submission overwrites the payload and drops the record back into
	// the unsynced partition; created_at must not move
	require.NoError(t, s.Upsert(ctx, "r1", `{"v":"b"}`))

	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, `{"v":"b"}`, all[0].Payload)
	assert.False(t, all[0].Synced)
	assert.Equal(t, created, all[0].CreatedAt)
	assert.Contains(t, unsyncedIDs(t, s), "r1")
}

func TestUpsert_Validation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "", `{"v":1}`)
	require.ErrorIs(t, err, common.ErrValidation)

	err = s.Upsert(ctx, "r1", "")
	require.ErrorIs(t, err, common.ErrValidation)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "no partial writes on validation failure")
}

func TestListUnsynced_PartitionMatchesFlag(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", `{"n":1}`))
	require.NoError(t, s.Upsert(ctx, "b", `{"n":2}`))
	require.NoError(t, s.Upsert(ctx, "c", `{"n":3}`))

	require.NoError(t, s.MarkSynced(ctx, []string{"b"}))

	ids := unsyncedIDs(t, s)
	assert.Equal(t, map[string]struct{}{"a": {}, "c": {}}, ids)
}

func TestMarkSynced_IgnoresUnknownIDs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a", `{"n":1}`))
	require.NoError(t, s.Upsert(ctx, "c", `{"n":3}`))

	// "b" does not exist: a and c must still be marked, without error
	require.NoError(t, s.MarkSynced(ctx, []string{"a", "b", "c"}))
	assert.Empty(t, unsyncedIDs(t, s))
}

func TestMarkSynced_EmptyBatchRejected(t *testing.T) {
	s := setupStore(t)

	err := s.MarkSynced(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestListAll_NewestFirst(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return ts }
		require.NoError(t, s.Upsert(ctx, id, `{"n":1}`))
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)
}

func TestCounts(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	total, unsynced, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, unsynced)

	require.NoError(t, s.Upsert(ctx, "a", `{"n":1}`))
	require.NoError(t, s.Upsert(ctx, "b", `{"n":2}`))
	require.NoError(t, s.MarkSynced(ctx, []string{"a"}))

	total, unsynced, err = s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, unsynced)
}
