package api

import (
	"html/template"
	"net/http"
	"time"
)

// The dashboard is a human-facing status page for the operator's laptop. It is
// not part of the sync contract.
var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Scout Hub</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
.synced { color: #2a7d2a; }
.pending { color: #b05a00; }
</style>
</head>
<body>
<h1>Scout Hub</h1>
<p>{{.Total}} record(s), {{.Unsynced}} waiting for sync. Updated {{.Now}}.</p>
<p><a href="/api/export-csv">Download CSV</a></p>
<table>
<tr><th>ID</th><th>Created</th><th>Status</th></tr>
{{range .Records}}
<tr>
<td>{{.ID}}</td>
<td>{{.CreatedAt}}</td>
{{if .Synced}}<td class="synced">synced</td>{{else}}<td class="pending">pending</td>{{end}}
</tr>
{{end}}
</table>
</body>
</html>
`))

type dashboardData struct {
	Total    int
	Unsynced int
	Now      string
	Records  []recordResponse
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	total, unsynced, err := s.store.Counts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.store.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = dashboardTmpl.Execute(w, dashboardData{
		Total:    total,
		Unsynced: unsynced,
		Now:      time.Now().UTC().Format(time.RFC3339),
		Records:  toRecordResponses(recs),
	})
}
