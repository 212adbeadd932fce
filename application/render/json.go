package render

import (
	"ai_testgen/domain/entities"
	"encoding/json"
	"time"
)

type jsonDocument struct {
	URL         string              `json:"url"`
	Title       string              `json:"title"`
	GeneratedAt time.Time           `json:"generatedAt"`
	TotalCount  int                 `json:"totalCount"`
	TestCases   []entities.TestCase `json:"testCases"`
}

func (r *Renderer) json(meta entities.ExportMeta, cases []entities.TestCase) string {
	if cases == nil {
		cases = []entities.TestCase{}
	}
	out, err := json.MarshalIndent(jsonDocument{
		URL:         meta.URL,
		Title:       meta.Title,
		GeneratedAt: meta.GeneratedAt,
		TotalCount:  len(cases),
		TestCases:   cases,
	}, "", "  ")
	if err != nil {
		// Only plain strings and numbers are marshalled
		return "{}"
	}
	return string(out)
}
