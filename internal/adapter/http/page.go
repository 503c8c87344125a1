package http

import (
	"bytes"
	"html/template"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>USAF Base Readiness Map</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 1100px; color: #222; }
img { max-width: 100%; border: 1px solid #ccc; }
.error { color: #a00; }
</style>
</head>
<body>
<h1>USAF Base Readiness Map</h1>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<img src="/map.png" alt="Base readiness map">
<h2>Insights</h2>
<ul>
{{range .Lines}}<li>{{.}}</li>
{{end}}</ul>
<h2>Recommendation</h2>
<p>{{.Recommendation}}</p>
<p><small>{{.Source}} &middot; generated {{.GeneratedAt}}</small></p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Error          string
	Lines          []string
	Recommendation string
	Source         string
	GeneratedAt    string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	var data pageData

	report, err := s.insights.Report(r.Context())
	if err != nil {
		status = statusFor(err)
		s.logger.Warn("dashboard unavailable", "status", status, "error", err)
		data.Error = err.Error()
	} else {
		data.Lines = report.Lines()
		data.Recommendation = report.Recommendation
		data.Source = report.Source
		data.GeneratedAt = report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}
