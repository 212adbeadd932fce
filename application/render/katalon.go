package render

import (
	"ai_testgen/domain/entities"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

type katalonVariable struct {
	DefaultValue string `xml:"defaultValue"`
	Description  string `xml:"description"`
	ID           string `xml:"id"`
	Masked       bool   `xml:"masked"`
	Name         string `xml:"name"`
}

type katalonTestCase struct {
	XMLName      xml.Name          `xml:"TestCaseEntity"`
	Description  string            `xml:"description"`
	Name         string            `xml:"name"`
	Tag          string            `xml:"tag"`
	Comment      string            `xml:"comment"`
	TestCaseGUID string            `xml:"testCaseGuid"`
	Variables    []katalonVariable `xml:"variable"`
}

var variableTitle = regexp.MustCompile(`(?i)form|input|field`)

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]+`)

func (r *Renderer) katalon(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	b.WriteString(xml.Header)

	for _, tc := range cases {
		entity := katalonTestCase{
			Description:  tc.Description,
			Name:         fmt.Sprintf("%s - %s", tc.ID, tc.Title),
			Tag:          katalonTag(tc),
			Comment:      tc.Description,
			TestCaseGUID: r.newGUID(),
		}
		if variableTitle.MatchString(tc.Title) {
			entity.Variables = r.katalonVariables(tc)
		}

		out, err := xml.MarshalIndent(entity, "", "   ")
		if err != nil {
			continue
		}
		b.Write(out)
		b.WriteString("\n")
	}
	return b.String()
}

// katalonTag - comma separated tags: category and priority
func katalonTag(tc entities.TestCase) string {
	tags := make([]string, 0, 2)
	if tc.Category != "" {
		tags = append(tags, string(tc.Category))
	}
	if tc.Priority != "" {
		tags = append(tags, "priority:"+string(tc.Priority))
	}
	return strings.Join(tags, ",")
}

// katalonVariables - one variable per distinct field typed into
func (r *Renderer) katalonVariables(tc entities.TestCase) []katalonVariable {
	var vars []katalonVariable
	seen := map[string]bool{}
	for _, step := range tc.Steps {
		p := resolveStep(step)
		if p.Kind != entities.PhraseEnterText {
			continue
		}
		name := variableName(fieldTarget(p))
		if seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, katalonVariable{
			DefaultValue: "'" + groovyEscape(inputValue(p)) + "'",
			Description:  "Value typed into " + fieldTarget(p),
			ID:           r.newGUID(),
			Name:         name,
		})
	}
	if len(vars) == 0 {
		vars = append(vars, katalonVariable{
			DefaultValue: "'test_value'",
			Description:  "Value typed into the field under test",
			ID:           r.newGUID(),
			Name:         "inputValue",
		})
	}
	return vars
}

func variableName(field string) string {
	name := strings.Trim(nonIdent.ReplaceAllString(field, "_"), "_")
	if name == "" {
		return "inputValue"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "v_" + name
	}
	return name
}
