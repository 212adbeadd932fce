// Package actiontext recovers element names, input fields, literal values and
// expected text from the free-text action/expected strings of a test step.
//
// The extractors are heuristics over the synthesizer's phrasing. They never fail:
// anything they cannot recognise degrades to a named default.
package actiontext

import (
	"ai_testgen/domain/entities"
	"regexp"
	"strings"
)

const (
	DefaultElement = "element"
	DefaultField   = "input_field"
	DefaultValue   = "test_value"
)

var (
	elementPattern  = regexp.MustCompile(`(?i)(?:click|find|submit)\s+(?:button|link)\s+(?:with text "([^"]*)"|with id "([^"]*)"|(\d+))`)
	fieldPattern    = regexp.MustCompile(`(?i)input field\s+(?:with id "([^"]*)"|with name "([^"]*)")`)
	valuePattern    = regexp.MustCompile(`(?i)enter\s+"([^"]*)"`)
	titlePattern    = regexp.MustCompile(`(?i)title is "([^"]*)"`)
	navigatePattern = regexp.MustCompile(`(?i)\bnavigate\b|\blaunch\b|\bopen\b|\bgo to\b`)
	clickPattern    = regexp.MustCompile(`(?i)\bclick\b|\bsubmit\b|\btap\b`)
	inputPattern    = regexp.MustCompile(`(?i)\benter\b|\btype\b|\bfill\b`)
	verifyPattern   = regexp.MustCompile(`(?i)\bverify\b|\bcheck\b|\bassert\b`)
	urlPattern      = regexp.MustCompile(`https?://\S+`)
)

// ExtractElementName - returns the element referenced by a click/find/submit action
func ExtractElementName(action string) string {
	m := elementPattern.FindStringSubmatch(action)
	for _, g := range m[min(1, len(m)):] {
		if g != "" {
			return g
		}
	}
	return DefaultElement
}

// ExtractInputField - returns the input field id or name referenced by an action
func ExtractInputField(action string) string {
	m := fieldPattern.FindStringSubmatch(action)
	for _, g := range m[min(1, len(m)):] {
		if g != "" {
			return g
		}
	}
	return DefaultField
}

// ExtractInputValue - returns the quoted literal of an Enter action
func ExtractInputValue(action string) string {
	if m := valuePattern.FindStringSubmatch(action); len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return DefaultValue
}

// ExtractExpectedText - returns the text a verification step expects to be visible
func ExtractExpectedText(expected string) string {
	if m := titlePattern.FindStringSubmatch(expected); len(m) > 1 {
		return m[1]
	}
	return strings.ReplaceAll(expected, `"`, "")
}

// ExtractURL - returns the first absolute URL in the text, or ""
func ExtractURL(text string) string {
	return strings.TrimRight(urlPattern.FindString(text), `."',;)`)
}

var operationPatterns = []struct {
	op      entities.Operation
	pattern *regexp.Regexp
}{
	{entities.OpNavigate, navigatePattern},
	{entities.OpClick, clickPattern},
	{entities.OpInput, inputPattern},
	{entities.OpVerify, verifyPattern},
}

// Classify - maps an action string to the driver operation it describes.
// The earliest keyword in the text wins; ties go to the first listed operation.
func Classify(action string) entities.Operation {
	op, best := entities.OpNone, -1
	for _, p := range operationPatterns {
		loc := p.pattern.FindStringIndex(action)
		if loc != nil && (best < 0 || loc[0] < best) {
			op, best = p.op, loc[0]
		}
	}
	return op
}

// Resolve - returns the typed form of a step. Synthesized steps carry their
// phrase; free text (AI output, edited cases) is classified and parsed.
func Resolve(step entities.TestStep) entities.Phrase {
	if step.Phrase != nil && step.Phrase.Kind != "" {
		return *step.Phrase
	}

	switch Classify(step.Action) {
	case entities.OpNavigate:
		return entities.Phrase{Kind: entities.PhraseNavigate, URL: ExtractURL(step.Action)}
	case entities.OpClick:
		return entities.Phrase{Kind: entities.PhraseClickButton, Target: ExtractElementName(step.Action)}
	case entities.OpInput:
		return entities.Phrase{
			Kind:  entities.PhraseEnterText,
			Field: ExtractInputField(step.Action),
			Value: ExtractInputValue(step.Action),
		}
	case entities.OpVerify:
		return entities.Phrase{Kind: entities.PhraseVerifyVisible, Text: ExtractExpectedText(step.Expected)}
	}
	return entities.Phrase{Kind: entities.PhraseManual, Text: step.Action}
}

// Operation - the driver operation a phrase kind executes as
func Operation(kind entities.PhraseKind) entities.Operation {
	switch kind {
	case entities.PhraseNavigate:
		return entities.OpNavigate
	case entities.PhraseClickButton, entities.PhraseClickLink, entities.PhraseSubmitForm, entities.PhraseOpenScreen:
		return entities.OpClick
	case entities.PhraseEnterText:
		return entities.OpInput
	case entities.PhraseVerifyTitle, entities.PhraseVerifyVisible, entities.PhraseVerifyCount:
		return entities.OpVerify
	}
	return entities.OpNone
}
