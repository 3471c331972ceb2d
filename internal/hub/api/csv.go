package api

import (
	"bytes"
	"encoding/csv"

	// The export path needs ordered access to the first payload's keys, which
	// requires the stdlib token decoder.
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// handleExportCSV renders every stored record as CSV for operators. The
// header is the id column, the first record's payload keys in document order,
// then synced and created_at. Payload structure knowledge is confined to this
// file; the storage contract stays opaque.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(recs) == 0 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("No data"))
		return
	}

	keys, err := payloadColumns([]byte(recs[0].Payload))
	if err != nil {
		// first payload is not an object; export id/synced/created_at only
		keys = nil
	}

	header := append(append([]string{"id"}, keys...), "synced", "created_at")

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(header)

	for _, rec := range recs {
		row := make([]string, 0, len(header))
		row = append(row, rec.ID)

		fields := payloadFields([]byte(rec.Payload))
		for _, k := range keys {
			row = append(row, cellValue(fields[k]))
		}

		row = append(row,
			strconv.FormatBool(rec.Synced),
			time.UnixMilli(rec.CreatedAt).UTC().Format(time.RFC3339),
		)
		_ = cw.Write(row)
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="scouting-records.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// payloadColumns returns the top-level keys of a JSON object in document
// order. Go maps do not preserve order, so the token stream is walked instead.
func payloadColumns(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("payload is not a JSON object")
	}

	var keys []string
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := t.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", t)
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := t.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := t.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func payloadFields(raw []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil
	}
	return fields
}

func cellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
