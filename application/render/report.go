package render

import (
	"ai_testgen/domain/entities"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Test Cases - {{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.case { border: 1px solid #ddd; border-radius: 4px; padding: 1em; margin-bottom: 1em; }
.priority-High { color: #b00020; }
.priority-Medium { color: #b26a00; }
.priority-Low { color: #2e7d32; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: left; }
</style>
</head>
<body>
<h1>Test Cases</h1>
<p>Page: {{.Title}}</p>
<p>URL: <a href="{{.URL}}">{{.URL}}</a></p>
<p>Generated: {{.Generated}}</p>
<p>Total: {{len .Cases}}</p>
{{range .Cases}}
<div class="case">
<h2>{{.ID}}: {{.Title}}</h2>
<p>{{.Description}}</p>
<p>Priority: <span class="priority-{{.Priority}}">{{.Priority}}</span></p>
{{if .Steps}}
<table>
<thead><tr><th>Step</th><th>Action</th><th>Expected Result</th></tr></thead>
<tbody>
{{range .Steps}}<tr><td>{{.Step}}</td><td>{{.Action}}</td><td>{{.Expected}}</td></tr>
{{end}}</tbody>
</table>
{{end}}
</div>
{{end}}
</body>
</html>
`))

type reportData struct {
	Title     string
	URL       string
	Generated string
	Cases     []entities.TestCase
}

func generatedAt(meta entities.ExportMeta) string {
	if meta.GeneratedAt.IsZero() {
		return ""
	}
	return meta.GeneratedAt.UTC().Format(time.RFC3339)
}

func (r *Renderer) html(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	err := reportTemplate.Execute(&b, reportData{
		Title:     meta.Title,
		URL:       meta.URL,
		Generated: generatedAt(meta),
		Cases:     cases,
	})
	if err != nil {
		return fmt.Sprintf("<!-- failed to render report: %s -->", template.HTMLEscapeString(err.Error()))
	}
	return b.String()
}

func (r *Renderer) text(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test Cases for %s\n", meta.Title)
	fmt.Fprintf(&b, "URL: %s\n", meta.URL)
	if g := generatedAt(meta); g != "" {
		fmt.Fprintf(&b, "Generated: %s\n", g)
	}
	fmt.Fprintf(&b, "Total: %d\n", len(cases))

	for i, tc := range cases {
		fmt.Fprintf(&b, "\n%d. %s: %s [%s]\n", i+1, tc.ID, tc.Title, tc.Priority)
		if tc.Description != "" {
			fmt.Fprintf(&b, "   %s\n", tc.Description)
		}
		for _, step := range tc.Steps {
			fmt.Fprintf(&b, "   Step %d: %s\n", step.Step, step.Action)
			fmt.Fprintf(&b, "           Expected: %s\n", step.Expected)
		}
	}
	return b.String()
}

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

func (r *Renderer) markdown(meta entities.ExportMeta, cases []entities.TestCase) string {
	md, err := r.mdConverter.ConvertString(r.html(meta, cases))
	if err != nil || strings.TrimSpace(md) == "" {
		return r.text(meta, cases)
	}
	return strings.TrimSpace(md) + "\n"
}
