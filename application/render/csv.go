package render

import (
	"ai_testgen/domain/entities"
	"fmt"
	"strings"
)

var csvHeader = []string{"Title", "Type", "Priority", "Preconditions", "Steps", "Expected Result", "References"}

// quote - wraps a field in double quotes, doubling inner quotes. TestRail's
// importer expects every data field quoted, which encoding/csv does not do.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f))
	}
	b.WriteByte('\n')
}

func (r *Renderer) csv(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteByte('\n')

	for _, tc := range cases {
		actions := make([]string, 0, len(tc.Steps))
		expected := make([]string, 0, len(tc.Steps))
		for _, step := range tc.Steps {
			actions = append(actions, fmt.Sprintf("%d. %s", step.Step, step.Action))
			expected = append(expected, fmt.Sprintf("%d. %s", step.Step, step.Expected))
		}
		writeRow(&b, []string{
			tc.Title,
			"Functional",
			string(tc.Priority),
			"None",
			strings.Join(actions, "\n"),
			strings.Join(expected, "\n"),
			meta.URL,
		})
	}
	return b.String()
}
