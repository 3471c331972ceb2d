package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ftcpit/scoutsync/internal/common"
)

// conflictColumns is the natural key the remote resolves duplicates on.
const conflictColumns = "event_code,team_number,match_number,submitter_id"

// HTTPStore talks to a PostgREST-style REST gateway in front of the
// authoritative database. The service key authenticates every call.
type HTTPStore struct {
	baseURL string
	key     string
	table   string
	client  *http.Client
}

func NewHTTPStore(baseURL, key string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		table:   CollectionEntries,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
}

// Upsert posts the record with upsert-on-conflict semantics: the gateway
// merges duplicates on the natural key, so re-delivery converges instead of
// duplicating.
func (s *HTTPStore) Upsert(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	u := fmt.Sprintf("%s/rest/v1/%s?on_conflict=%s", s.baseURL, s.table, url.QueryEscape(conflictColumns))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrRemoteConflict, rec.ConflictKey())
	default:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("remote upsert failed: %s; body: %s", resp.Status, string(b))
	}
}

// FetchSnapshot pulls a whole collection for one event.
func (s *HTTPStore) FetchSnapshot(ctx context.Context, collection, eventCode string) ([]byte, error) {
	if collection != CollectionEntries && collection != CollectionSchedule {
		return nil, fmt.Errorf("%w: unknown collection %q", common.ErrValidation, collection)
	}

	u := fmt.Sprintf("%s/rest/v1/%s?event_code=eq.%s", s.baseURL, collection, url.QueryEscape(eventCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("snapshot fetch failed: %s; body: %s", resp.Status, string(b))
	}
	return io.ReadAll(resp.Body)
}

// Ping probes the gateway root. Any HTTP answer counts as reachable; only a
// transport-level failure means offline.
func (s *HTTPStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: remote unhealthy: %s", common.ErrTransport, resp.Status)
	}
	return nil
}

func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
