// Package hubclient is the HTTP client for the hub's local submission API,
// used by scouting devices on the event network and by the reconciliation
// tool afterwards.
package hubclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ftcpit/scoutsync/internal/common"
)

// Record is one stored submission as the hub reports it.
type Record struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
	Synced    bool            `json:"synced"`
}

// Health is the hub's health report.
type Health struct {
	OK        bool   `json:"ok"`
	Total     int    `json:"total"`
	Unsynced  int    `json:"unsynced"`
	Timestamp string `json:"timestamp"`
}

type submitRequest struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type markSyncedRequest struct {
	IDs []string `json:"ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to one hub instance.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit stores one record on the hub. Safe to retry with the same id.
func (c *Client) Submit(ctx context.Context, id string, payload []byte) error {
	body, err := json.Marshal(submitRequest{ID: id, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode submit request: %w", err)
	}
	return c.post(ctx, "/api/submit", body, nil)
}

// ListUnsynced returns every record awaiting reconciliation.
func (c *Client) ListUnsynced(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := c.get(ctx, "/api/unsynced", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// MarkSynced flags the given records as delivered to the remote store.
func (c *Client) MarkSynced(ctx context.Context, ids []string) error {
	body, err := json.Marshal(markSyncedRequest{IDs: ids})
	if err != nil {
		return fmt.Errorf("failed to encode mark-synced request: %w", err)
	}
	return c.post(ctx, "/api/mark-synced", body, nil)
}

// Health fetches the hub's record counts.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/api/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: hub unreachable: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr errorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("hub returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("hub returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode hub response: %w", err)
	}
	return nil
}
