package pipeline

import (
	"fmt"
	"html/template"
	"os"

	"boxoffice-pipeline/internal/model"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": FormatNumber,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Box office dashboard {{.JobID}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.cards { display: flex; gap: 1rem; }
.card { border: 1px solid #ccc; border-radius: 6px; padding: 0.75rem 1rem; }
.card .label { color: #666; font-size: 0.85rem; }
.card .value { font-size: 1.5rem; font-weight: bold; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ddd; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
<h1>Box office dashboard</h1>
<p class="meta">variant {{.Variant}} · aggregation {{.Aggregation}} · selection {{range $i, $s := .Selection}}{{if $i}}, {{end}}{{$s}}{{else}}none{{end}}</p>
<div class="cards">
{{range .Cards}}<div class="card" data-metric="{{.Metric}}"><div class="label">{{.Label}}</div><div class="value">{{.Formatted}}</div></div>
{{end}}</div>
<h2>Competing windows</h2>
<table id="windows">
<tr><th>Movie</th><th>Release</th><th>From</th><th>To</th></tr>
{{range .Windows}}<tr><td>{{.Movie}}</td><td>{{.Anchor}}</td><td>{{.Start}}</td><td>{{.End}}</td></tr>
{{end}}</table>
<h2>Movies by release year</h2>
<table id="year-groups">
<tr><th>Movie</th><th>Year</th><th>Shows</th><th>Screens</th><th>Audience</th><th>First release</th></tr>
{{range .YearGroups}}<tr><td>{{.Movie}}</td><td>{{.Year}}</td><td>{{num .Shows}}</td><td>{{num .Screens}}</td><td>{{num .Audience}}</td><td>{{.FirstRelease}}</td></tr>
{{end}}</table>
<h2>Release span</h2>
<table id="durations">
<tr><th>Movie</th><th>Start</th><th>End</th><th>Days</th></tr>
{{range .Durations}}<tr><td>{{.Movie}}</td><td>{{.Start}}</td><td>{{.End}}</td><td>{{.Days}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// exportToHTML renders a static report with the cards and summary tables.
func exportToHTML(path string, d *model.Dashboard) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := reportTemplate.Execute(file, d); err != nil {
		return 0, fmt.Errorf("failed to render report: %w", err)
	}
	return len(d.Combined), nil
}
