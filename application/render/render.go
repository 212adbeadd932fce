// Package render converts test cases into downloadable export documents:
// JSON, Maestro flows, Katalon test entities, CSV/TestRail imports, reports and
// automation scripts. Rendering is pure; the only injected dependency is the
// GUID source used by the Katalon formats.
package render

import (
	"ai_testgen/domain/entities"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/google/uuid"
)

type formatInfo struct {
	filename    string
	contentType string
	render      func(r *Renderer, meta entities.ExportMeta, cases []entities.TestCase) string
}

var formats = map[entities.Format]formatInfo{
	entities.FormatJSON:          {"test-cases.json", "application/json", (*Renderer).json},
	entities.FormatMaestro:       {"maestro-flow.yaml", "application/yaml", (*Renderer).maestro},
	entities.FormatKatalon:       {"katalon-tests.tc", "application/octet-stream", (*Renderer).katalon},
	entities.FormatTestRail:      {"testrail-import.csv", "text/csv", (*Renderer).csv},
	entities.FormatCSV:           {"test-cases.csv", "text/csv", (*Renderer).csv},
	entities.FormatHTML:          {"test-cases.html", "text/html", (*Renderer).html},
	entities.FormatText:          {"test-cases.txt", "text/plain", (*Renderer).text},
	entities.FormatMarkdown:      {"test-cases.md", "text/markdown", (*Renderer).markdown},
	entities.FormatKatalonScript: {"katalon-script.groovy", "text/plain", (*Renderer).groovy},
	entities.FormatPlaywright:    {"playwright.spec.js", "text/javascript", (*Renderer).playwright},
}

// Renderer renders export documents
type Renderer struct {
	newGUID     func() string
	mdConverter *converter.Converter
}

// Option configures a Renderer
type Option func(*Renderer)

// WithGUIDGenerator replaces the random v4 UUID source, mostly for tests
func WithGUIDGenerator(gen func() string) Option {
	return func(r *Renderer) {
		r.newGUID = gen
	}
}

// New - creates a renderer
func New(opts ...Option) *Renderer {
	r := &Renderer{
		newGUID:     uuid.NewString,
		mdConverter: newMarkdownConverter(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var defaultRenderer = New()

// Render - renders cases with the default renderer
func Render(format entities.Format, meta entities.ExportMeta, cases []entities.TestCase) entities.ExportDocument {
	return defaultRenderer.Render(format, meta, cases)
}

// Render - renders cases in format. Unknown formats fall back to JSON.
func (r *Renderer) Render(format entities.Format, meta entities.ExportMeta, cases []entities.TestCase) entities.ExportDocument {
	s, ok := formats[format]
	if !ok {
		format = entities.FormatJSON
		s = formats[format]
	}
	return entities.ExportDocument{
		Format:      format,
		Filename:    s.filename,
		ContentType: s.contentType,
		Body:        s.render(r, meta, numbered(cases)),
	}
}

// numbered - copies cases with steps renumbered 1..n. Cases posted by
// clients may omit or misnumber "step".
func numbered(cases []entities.TestCase) []entities.TestCase {
	out := make([]entities.TestCase, len(cases))
	for i, tc := range cases {
		tc.Steps = append([]entities.TestStep(nil), tc.Steps...)
		tc.Renumber()
		out[i] = tc
	}
	return out
}
