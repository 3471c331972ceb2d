package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftcpit/scoutsync/internal/hub/api"
	"github.com/ftcpit/scoutsync/internal/hub/models"
)

// fixedStore serves a canned record set so export output is deterministic.
type fixedStore struct {
	records []models.Record
}

func (s fixedStore) Upsert(context.Context, string, string) error { return nil }
func (s fixedStore) MarkSynced(context.Context, []string) error   { return nil }
func (s fixedStore) ListUnsynced(context.Context) ([]models.Record, error) {
	return nil, nil
}
func (s fixedStore) ListAll(context.Context) ([]models.Record, error) {
	return s.records, nil
}
func (s fixedStore) Counts(context.Context) (int, int, error) {
	return len(s.records), 0, nil
}

func exportCSV(t *testing.T, store api.RecordStore) (*http.Response, []byte) {
	t.Helper()
	srv := httptest.NewServer(api.NewServer("", store, testLogger()).Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/export-csv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestExportCSV_Golden(t *testing.T) {
	store := fixedStore{records: []models.Record{
		{
			ID:        "m2-118-red",
			Payload:   `{"team_number":118,"match_number":2,"notes":"fast, reliable"}`,
			Synced:    false,
			CreatedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC).UnixMilli(),
		},
		{
			ID:        "m3-254-blue",
			Payload:   `{"team_number":254,"match_number":3,"notes":"solid"}`,
			Synced:    true,
			CreatedAt: time.Date(2026, 2, 14, 9, 45, 0, 0, time.UTC).UnixMilli(),
		},
	}}

	resp, body := exportCSV(t, store)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	g := goldie.New(t)
	g.Assert(t, "export", body)
}

func TestExportCSV_HeaderFromFirstPayloadKeys(t *testing.T) {
	store := fixedStore{records: []models.Record{
		{
			ID:        "r1",
			Payload:   `{"team_number":118,"match_number":2}`,
			CreatedAt: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
	}}

	_, body := exportCSV(t, store)
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,team_number,match_number,synced,created_at", lines[0])
	assert.Equal(t, "r1,118,2,false,2026-02-14T10:00:00Z", lines[1])
}

func TestExportCSV_MissingPayloadKeyLeavesEmptyCell(t *testing.T) {
	store := fixedStore{records: []models.Record{
		{
			ID:        "r1",
			Payload:   `{"team_number":118,"auton_points":7}`,
			CreatedAt: time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC).UnixMilli(),
		},
		{
			ID:        "r2",
			Payload:   `{"team_number":254}`,
			CreatedAt: time.Date(2026, 2, 14, 10, 5, 0, 0, time.UTC).UnixMilli(),
		},
	}}

	_, body := exportCSV(t, store)
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "r2,254,,false,2026-02-14T10:05:00Z", lines[2])
}

func TestExportCSV_EmptyStore(t *testing.T) {
	resp, body := exportCSV(t, fixedStore{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, "No data", string(body))
}
