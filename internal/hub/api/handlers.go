package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ftcpit/scoutsync/internal/common"
	"github.com/ftcpit/scoutsync/internal/hub/models"
)

type submitRequest struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type markSyncedRequest struct {
	IDs []string `json:"ids"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type healthResponse struct {
	OK        bool   `json:"ok"`
	Total     int    `json:"total"`
	Unsynced  int    `json:"unsynced"`
	Timestamp string `json:"timestamp"`
}

type recordResponse struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
	Synced    bool            `json:"synced"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, unsynced, err := s.store.Counts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		OK:        true,
		Total:     total,
		Unsynced:  unsynced,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSubmit is the idempotency boundary: devices on a flaky network may
// retry the same id any number of times, the result is always last write wins
// with the synced flag reset.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.ID == "" || len(req.Payload) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id and payload are required"})
		return
	}

	if err := s.store.Upsert(r.Context(), req.ID, coercePayload(req.Payload)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.submissionsTotal.Inc()
	s.logger.Debug(r.Context(), "record submitted", "id", req.ID)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleMarkSynced(w http.ResponseWriter, r *http.Request) {
	var req markSyncedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := s.store.MarkSynced(r.Context(), req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.markSyncedTotal.Add(float64(len(req.IDs)))
	s.logger.Info(r.Context(), "records marked synced", "count", len(req.IDs))
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleUnsynced(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListUnsynced(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponses(recs))
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponses(recs))
}

// coercePayload normalizes the submitted payload to its stored string form:
// a JSON string keeps its value, anything else is stored as serialized JSON.
func coercePayload(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

func toRecordResponses(recs []models.Record) []recordResponse {
	out := make([]recordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordResponse{
			ID:        rec.ID,
			Payload:   payloadJSON(rec.Payload),
			CreatedAt: time.UnixMilli(rec.CreatedAt).UTC().Format(time.RFC3339),
			Synced:    rec.Synced,
		})
	}
	return out
}

// payloadJSON re-emits a stored payload: valid JSON passes through untouched,
// anything else is quoted as a JSON string.
func payloadJSON(payload string) json.RawMessage {
	if json.Valid([]byte(payload)) {
		return json.RawMessage(payload)
	}
	b, _ := json.Marshal(payload)
	return b
}
