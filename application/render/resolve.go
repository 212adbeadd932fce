package render

import (
	"ai_testgen/application/actiontext"
	"ai_testgen/domain/entities"
	"strings"
)

// resolveStep - the typed form of a step
func resolveStep(step entities.TestStep) entities.Phrase {
	return actiontext.Resolve(step)
}

// clickTarget - what a click should aim at: label, then selector, then the parser default
func clickTarget(p entities.Phrase) string {
	switch {
	case p.Target != "":
		return p.Target
	case p.Selector != "":
		return p.Selector
	}
	return actiontext.DefaultElement
}

func fieldTarget(p entities.Phrase) string {
	switch {
	case p.Field != "":
		return p.Field
	case p.Target != "":
		return p.Target
	}
	return actiontext.DefaultField
}

func inputValue(p entities.Phrase) string {
	if p.Value != "" {
		return p.Value
	}
	return actiontext.DefaultValue
}

// isClick reports phrase kinds that resolve to a click/tap
func isClick(k entities.PhraseKind) bool {
	return k == entities.PhraseClickButton || k == entities.PhraseClickLink || k == entities.PhraseSubmitForm
}

// oneLine flattens text for single-line output formats
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstNavigation reports whether step is the opening navigation of its case
func firstNavigation(step entities.TestStep, p entities.Phrase) bool {
	return step.Step == 1 && p.Kind == entities.PhraseNavigate
}
