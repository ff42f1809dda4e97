package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// HTMLPluginName is the registry name of the html report. The failure
// reporter attaches evidence only when a plugin with this name is active.
const HTMLPluginName = "html"

// HTMLReport renders a single self-contained HTML page when the run ends.
type HTMLReport struct {
	*Collector
	path  string
	title string
}

// NewHTMLReport creates a report written to path on Close.
func NewHTMLReport(path, title string) *HTMLReport {
	if title == "" {
		title = "Test Report"
	}
	return &HTMLReport{Collector: NewCollector(), path: path, title: title}
}

// Name implements Plugin.
func (r *HTMLReport) Name() string {
	return HTMLPluginName
}

// Path returns the report file.
func (r *HTMLReport) Path() string {
	return r.path
}

// OnOutcome implements Listener.
func (r *HTMLReport) OnOutcome(tc *TestContext, o *Outcome) {
	r.Collect(tc, o)
}

type htmlEvidence struct {
	Kind  EvidenceKind
	Href  string
	Title string
}

type htmlRow struct {
	Name     string
	Browser  string
	Result   Result
	Message  string
	Duration string
	Evidence []htmlEvidence
}

// Close writes the report.
func (r *HTMLReport) Close() error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	var rows []htmlRow
	for _, tr := range r.Results() {
		row := htmlRow{
			Name:     tr.Name,
			Browser:  tr.Browser,
			Result:   tr.Result,
			Message:  tr.Message,
			Duration: tr.Duration.Round(time.Millisecond).String(),
		}
		for _, e := range tr.Evidence {
			row.Evidence = append(row.Evidence, htmlEvidence{
				Kind:  e.Kind,
				Href:  relativeTo(dir, e.Path),
				Title: e.Title,
			})
		}
		rows = append(rows, row)
	}

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create html report: %w", err)
	}
	defer f.Close()

	data := struct {
		Title     string
		Generated string
		Counts    Counts
		Rows      []htmlRow
	}{
		Title:     r.title,
		Generated: time.Now().Format(time.RFC3339),
		Counts:    r.Counts(),
		Rows:      rows,
	}
	if err := htmlTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return f.Close()
}

// relativeTo makes evidence links work when the report is opened from disk.
func relativeTo(dir, path string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px; text-align: left; vertical-align: top; }
.passed { color: #1a7f37; } .failed, .error { color: #cf222e; } .skipped { color: #9a6700; }
img { max-width: 480px; display: block; margin-top: 4px; }
pre { white-space: pre-wrap; margin: 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated}}: {{.Counts.Passed}} passed, {{.Counts.Failed}} failed, {{.Counts.Errors}} errors, {{.Counts.Skipped}} skipped</p>
<table>
<tr><th>Result</th><th>Test</th><th>Browser</th><th>Duration</th><th>Details</th></tr>
{{- range .Rows}}
<tr>
<td class="{{.Result}}">{{.Result}}</td>
<td>{{.Name}}</td>
<td>{{.Browser}}</td>
<td>{{.Duration}}</td>
<td>{{if .Message}}<pre>{{.Message}}</pre>{{end}}
{{- range .Evidence}}
{{- if eq (print .Kind) "image"}}<a href="{{.Href}}"><img src="{{.Href}}" alt="{{.Title}}"></a>
{{- else}}<a href="{{.Href}}">{{.Title}}</a>{{end}}
{{- end}}</td>
</tr>
{{- end}}
</table>
</body>
</html>
`))
