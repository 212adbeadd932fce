package render

import (
	"ai_testgen/domain/entities"
	"fmt"
	"strings"
)

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// groovyEscape - escapes s for a single-quoted Groovy or JS literal
func groovyEscape(s string) string {
	return literalEscaper.Replace(s)
}

func lit(s string) string {
	return "'" + groovyEscape(s) + "'"
}

const groovyPreamble = `import com.kms.katalon.core.testobject.ConditionType
import com.kms.katalon.core.testobject.TestObject
import com.kms.katalon.core.webui.keyword.WebUiBuiltInKeywords as WebUI

TestObject byText(String text) {
    return new TestObject(text).addProperty('xpath', ConditionType.EQUALS, "//*[normalize-space(.)='" + text + "']")
}

TestObject byField(String field) {
    return new TestObject(field).addProperty('xpath', ConditionType.EQUALS, "//*[@name='" + field + "' or @id='" + field + "']")
}

TestObject byCss(String css) {
    return new TestObject(css).addProperty('css', ConditionType.EQUALS, css)
}
`

func (r *Renderer) groovy(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Test cases for %s\n// URL: %s\n\n", oneLine(meta.Title), oneLine(meta.URL))
	b.WriteString(groovyPreamble)
	b.WriteString("\nWebUI.openBrowser('')\n")

	for _, tc := range cases {
		fmt.Fprintf(&b, "\n// %s: %s\n", tc.ID, oneLine(tc.Title))
		for _, step := range tc.Steps {
			writeGroovyStep(&b, resolveStep(step), step, meta)
		}
	}

	b.WriteString("\nWebUI.closeBrowser()\n")
	return b.String()
}

func writeGroovyStep(b *strings.Builder, p entities.Phrase, step entities.TestStep, meta entities.ExportMeta) {
	switch {
	case p.Kind == entities.PhraseNavigate:
		url := p.URL
		if url == "" {
			url = meta.URL
		}
		fmt.Fprintf(b, "WebUI.navigateToUrl(%s)\n", lit(url))
	case isClick(p.Kind), p.Kind == entities.PhraseOpenScreen:
		fmt.Fprintf(b, "WebUI.click(%s)\n", groovyObject(p.Selector, "byText", clickTarget(p)))
	case p.Kind == entities.PhraseEnterText:
		fmt.Fprintf(b, "WebUI.setText(%s, %s)\n", groovyObject(p.Selector, "byField", fieldTarget(p)), lit(inputValue(p)))
	case p.Kind == entities.PhraseVerifyTitle && p.Text != "":
		fmt.Fprintf(b, "WebUI.verifyMatch(WebUI.getWindowTitle(), %s, false)\n", lit(p.Text))
	case p.Kind == entities.PhraseVerifyVisible && p.Text != "":
		fmt.Fprintf(b, "WebUI.verifyTextPresent(%s, false)\n", lit(p.Text))
	default:
		fmt.Fprintf(b, "// %s: %s\n", oneLine(step.Action), oneLine(step.Expected))
	}
}

func groovyObject(selector, fallback, arg string) string {
	if selector != "" {
		return "byCss(" + lit(selector) + ")"
	}
	return fallback + "(" + lit(arg) + ")"
}

func (r *Renderer) playwright(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	b.WriteString("const { test, expect } = require('@playwright/test');\n\n")
	fmt.Fprintf(&b, "test.describe(%s, () => {\n", lit("Test cases for "+oneLine(meta.Title)))

	for _, tc := range cases {
		fmt.Fprintf(&b, "\n  test(%s, async ({ page }) => {\n", lit(tc.ID+": "+oneLine(tc.Title)))
		for _, step := range tc.Steps {
			writePlaywrightStep(&b, resolveStep(step), step, meta)
		}
		b.WriteString("  });\n")
	}

	b.WriteString("});\n")
	return b.String()
}

func writePlaywrightStep(b *strings.Builder, p entities.Phrase, step entities.TestStep, meta entities.ExportMeta) {
	const indent = "    "
	switch {
	case p.Kind == entities.PhraseNavigate:
		url := p.URL
		if url == "" {
			url = meta.URL
		}
		fmt.Fprintf(b, "%sawait page.goto(%s);\n", indent, lit(url))
	case isClick(p.Kind), p.Kind == entities.PhraseOpenScreen:
		fmt.Fprintf(b, "%sawait %s.click();\n", indent, playwrightLocator(p.Selector, "getByText", clickTarget(p)))
	case p.Kind == entities.PhraseEnterText:
		loc := playwrightLocator(p.Selector, "", fieldTarget(p))
		fmt.Fprintf(b, "%sawait %s.fill(%s);\n", indent, loc, lit(inputValue(p)))
	case p.Kind == entities.PhraseVerifyTitle && p.Text != "":
		fmt.Fprintf(b, "%sawait expect(page).toHaveTitle(%s);\n", indent, lit(p.Text))
	case p.Kind == entities.PhraseVerifyVisible && p.Text != "":
		fmt.Fprintf(b, "%sawait expect(page.getByText(%s).first()).toBeVisible();\n", indent, lit(p.Text))
	case p.Kind == entities.PhraseVerifyCount && p.Selector != "":
		fmt.Fprintf(b, "%sawait expect(page.locator(%s)).toHaveCount(%d);\n", indent, lit(p.Selector), p.Count)
	default:
		fmt.Fprintf(b, "%s// %s: %s\n", indent, oneLine(step.Action), oneLine(step.Expected))
	}
}

// playwrightLocator - css locator when a selector is known, otherwise the
// by-text locator, or a name/id lookup for fields
func playwrightLocator(selector, byText, arg string) string {
	switch {
	case selector != "":
		return "page.locator(" + lit(selector) + ").first()"
	case byText != "":
		return "page." + byText + "(" + lit(arg) + ").first()"
	}
	return "page.locator(" + lit(entities.AttrSelector("name", arg)+", "+entities.AttrSelector("id", arg)) + ").first()"
}
