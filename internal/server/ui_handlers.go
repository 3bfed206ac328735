package server

import (
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>mixopt jobs</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.completed { color: #2a7a2a; }
.failed { color: #a02020; }
.running { color: #1a5aa0; }
</style>
</head>
<body>
<h1>Optimization jobs</h1>
{{if .}}
<table>
<tr>
  <th>ID</th><th>State</th><th>Algorithm</th><th>Target (MPa)</th>
  <th>Generation</th><th>Fitness</th><th>Cost €/m³</th><th>CO₂ kg/m³</th>
  <th>Feasible</th><th>Links</th>
</tr>
{{range .}}
<tr>
  <td>{{.ID}}</td>
  <td class="{{.State}}">{{.State}}</td>
  <td>{{.Config.Algorithm}}</td>
  <td>{{.Config.MinStrength}}</td>
  <td>{{.Generation}}</td>
  <td>{{printf "%.4f" .BestFitness}}</td>
  <td>{{printf "%.2f" .Cost}}</td>
  <td>{{printf "%.1f" .CO2}}</td>
  <td>{{.Feasible}}</td>
  <td>
    <a href="/api/v1/jobs/{{.ID}}/status">status</a>
    <a href="/api/v1/jobs/{{.ID}}/trace.html">chart</a>
    <a href="/api/v1/jobs/{{.ID}}/trace.csv">csv</a>
  </td>
</tr>
{{end}}
</table>
{{else}}
<p>No jobs yet. POST to /api/v1/jobs to start one.</p>
{{end}}
</body>
</html>
`))

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.jobManager.ListJobs()); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
