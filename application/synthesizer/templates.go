package synthesizer

import (
	"ai_testgen/domain/entities"
	"fmt"
	"strings"
)

// Selectors used by count checks, matching what the extractors collect
var countSelectors = map[entities.ElementType]string{
	entities.ElementButton: `button, input[type="submit"], input[type="button"], input[type="reset"], [role="button"]`,
	entities.ElementInput:  `input:not([type="hidden"]):not([type="submit"]):not([type="button"]):not([type="reset"]), textarea, select`,
	entities.ElementLink:   `a[href]`,
	entities.ElementForm:   `form`,
}

// countOrder is the order of the TC_COUNT_n aggregate cases
var countOrder = []entities.ElementType{
	entities.ElementButton,
	entities.ElementInput,
	entities.ElementLink,
	entities.ElementForm,
}

var plurals = map[entities.ElementType]string{
	entities.ElementButton: "buttons",
	entities.ElementInput:  "inputs",
	entities.ElementLink:   "links",
	entities.ElementForm:   "forms",
	entities.ElementScreen: "screens",
}

// SampleValue - picks a plausible literal for an input from its type and name
func SampleValue(el entities.Element) string {
	kind := strings.ToLower(el.Type)
	hint := strings.ToLower(el.Name + " " + el.ID + " " + el.Placeholder)

	switch {
	case kind == "email" || strings.Contains(hint, "email"):
		return "test@example.com"
	case kind == "password" || strings.Contains(hint, "password"):
		return "Password123!"
	case kind == "tel" || strings.Contains(hint, "phone"):
		return "+15555550100"
	case kind == "number":
		return "42"
	case kind == "url":
		return "https://example.com"
	}
	return "test_value"
}

func caseID(prefix string, n int) string {
	return fmt.Sprintf("TC_%s_%d", prefix, n)
}

func navigateStep(snapshot *entities.PageSnapshot) entities.TestStep {
	return navigateTo(snapshot.URL, snapshot.IsMobile())
}

func navigateTo(url string, mobile bool) entities.TestStep {
	step := entities.TestStep{
		Action:   "Navigate to " + url,
		Expected: "Page loads successfully",
		Phrase:   &entities.Phrase{Kind: entities.PhraseNavigate, URL: url},
	}
	if mobile {
		step.Action = "Launch app " + url
		step.Expected = "App launches successfully"
	}
	return step
}

func verifyTitleStep(title string) entities.TestStep {
	return entities.TestStep{
		Action:   "Verify page title",
		Expected: fmt.Sprintf("Title is \"%s\"", title),
		Phrase:   &entities.Phrase{Kind: entities.PhraseVerifyTitle, Text: title},
	}
}

func enterStep(el entities.Element, label string) entities.TestStep {
	sample := SampleValue(el)
	step := entities.TestStep{
		Expected: fmt.Sprintf("Input field accepts the value \"%s\"", sample),
		Phrase: &entities.Phrase{
			Kind:     entities.PhraseEnterText,
			Target:   label,
			Selector: el.Target(),
			Value:    sample,
		},
	}
	switch {
	case el.Name != "":
		step.Action = fmt.Sprintf("Enter \"%s\" into input field with name \"%s\"", sample, el.Name)
		step.Phrase.Field = el.Name
	case el.ID != "":
		step.Action = fmt.Sprintf("Enter \"%s\" into input field with ID \"%s\"", sample, el.ID)
		step.Phrase.Field = el.ID
	default:
		step.Action = fmt.Sprintf("Enter \"%s\" into the \"%s\" input field", sample, label)
		step.Phrase.Field = label
	}
	return step
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// finish - numbers the steps of a case
func finish(tc entities.TestCase) entities.TestCase {
	tc.Renumber()
	return tc
}

func (s *Synthesizer) aggregateCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	if index == 0 {
		return finish(entities.TestCase{
			ID:          caseID("PAGE", 1),
			Title:       "Verify page loads successfully",
			Description: fmt.Sprintf("Open %s and confirm the page title", snapshot.URL),
			Priority:    s.policy.Priority(entities.ElementPage, nil),
			Category:    entities.ElementPage,
			Steps:       []entities.TestStep{navigateStep(snapshot), verifyTitleStep(snapshot.Title)},
		})
	}

	t := countOrder[index-1]
	n := snapshot.Count(t)
	return finish(entities.TestCase{
		ID:          caseID("COUNT", index),
		Title:       fmt.Sprintf("Verify %s count", plurals[t]),
		Description: fmt.Sprintf("Check that the page renders %d %s", n, plurals[t]),
		Priority:    s.policy.Priority(t, nil),
		Category:    entities.ElementPage,
		Steps: []entities.TestStep{
			navigateStep(snapshot),
			{
				Action:   fmt.Sprintf("Verify %s count", t),
				Expected: fmt.Sprintf("Page contains %d %s", n, plurals[t]),
				Phrase: &entities.Phrase{
					Kind:     entities.PhraseVerifyCount,
					Selector: countSelectors[t],
					Count:    n,
				},
			},
		},
	})
}

func (s *Synthesizer) buttonCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	el := snapshot.Buttons[index]
	label := labelOr(el.Label(), fmt.Sprintf("Button %d", index+1))

	return finish(entities.TestCase{
		ID:          caseID("BTN", index+1),
		Title:       fmt.Sprintf("Verify \"%s\" button is clickable", label),
		Description: fmt.Sprintf("Click the \"%s\" button and confirm its action completes", label),
		Priority:    s.policy.Priority(entities.ElementButton, &el),
		Category:    entities.ElementButton,
		Steps: []entities.TestStep{
			navigateStep(snapshot),
			{
				Action:   fmt.Sprintf("Click the \"%s\" button", label),
				Expected: label + " action completes successfully",
				Phrase: &entities.Phrase{
					Kind:     entities.PhraseClickButton,
					Target:   label,
					Selector: el.Target(),
				},
			},
		},
	})
}

func (s *Synthesizer) inputCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	el := snapshot.Inputs[index]
	label := labelOr(el.Label(), fmt.Sprintf("Input %d", index+1))

	return finish(entities.TestCase{
		ID:          caseID("INPUT", index+1),
		Title:       fmt.Sprintf("Verify input field \"%s\" accepts input", label),
		Description: fmt.Sprintf("Type a sample value into \"%s\"", label),
		Priority:    s.policy.Priority(entities.ElementInput, &el),
		Category:    entities.ElementInput,
		Steps:       []entities.TestStep{navigateStep(snapshot), enterStep(el, label)},
	})
}

func (s *Synthesizer) linkCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	el := snapshot.Links[index]
	label := labelOr(el.Label(), fmt.Sprintf("Link %d", index+1))

	expected := "Linked page opens"
	if el.Href != "" {
		expected = fmt.Sprintf("Navigation to %s succeeds", el.Href)
	}

	return finish(entities.TestCase{
		ID:          caseID("LINK", index+1),
		Title:       fmt.Sprintf("Verify \"%s\" link navigation", label),
		Description: fmt.Sprintf("Follow the \"%s\" link", label),
		Priority:    s.policy.Priority(entities.ElementLink, &el),
		Category:    entities.ElementLink,
		Steps: []entities.TestStep{
			navigateStep(snapshot),
			{
				Action:   fmt.Sprintf("Click link with text \"%s\"", label),
				Expected: expected,
				Phrase: &entities.Phrase{
					Kind:     entities.PhraseClickLink,
					Target:   label,
					Selector: el.Target(),
					URL:      el.Href,
				},
			},
		},
	})
}

func (s *Synthesizer) formCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	form := snapshot.Forms[index]
	label := labelOr(form.Label(), fmt.Sprintf("Form %d", index+1))
	submit := labelOr(strings.TrimSpace(form.SubmitText), "Submit")

	steps := []entities.TestStep{navigateStep(snapshot)}
	for i, in := range form.Inputs {
		steps = append(steps, enterStep(in, labelOr(in.Label(), fmt.Sprintf("Input %d", i+1))))
	}

	selector := ""
	if form.Selector != "" {
		selector = form.Selector + ` [type="submit"]`
	}
	steps = append(steps, entities.TestStep{
		Action:   fmt.Sprintf("Submit button with text \"%s\"", submit),
		Expected: "Form submits successfully",
		Phrase: &entities.Phrase{
			Kind:     entities.PhraseSubmitForm,
			Target:   submit,
			Selector: selector,
		},
	})

	return finish(entities.TestCase{
		ID:          caseID("FORM", index+1),
		Title:       fmt.Sprintf("Verify form \"%s\" submits", label),
		Description: fmt.Sprintf("Fill in the %d field(s) of form \"%s\" and submit it", len(form.Inputs), label),
		Priority:    s.policy.FormPriority(form),
		Category:    entities.ElementForm,
		Steps:       steps,
	})
}

func (s *Synthesizer) screenCase(snapshot *entities.PageSnapshot, index int) entities.TestCase {
	screen := snapshot.Screens[index]
	name := labelOr(strings.TrimSpace(screen.Name), labelOr(screen.ID, fmt.Sprintf("Screen %d", index+1)))

	steps := []entities.TestStep{
		navigateStep(snapshot),
		{
			Action:   fmt.Sprintf("Open the \"%s\" screen", name),
			Expected: fmt.Sprintf("Screen \"%s\" is displayed", name),
			Phrase:   &entities.Phrase{Kind: entities.PhraseOpenScreen, Target: name, Text: name},
		},
	}
	if len(screen.Elements) > 0 {
		if first := screen.Elements[0].Label(); first != "" {
			steps = append(steps, entities.TestStep{
				Action:   fmt.Sprintf("Verify \"%s\" is visible", first),
				Expected: fmt.Sprintf("%s is visible on the screen", first),
				Phrase:   &entities.Phrase{Kind: entities.PhraseVerifyVisible, Text: first},
			})
		}
	}

	return finish(entities.TestCase{
		ID:          caseID("SCREEN", index+1),
		Title:       fmt.Sprintf("Verify \"%s\" screen is displayed", name),
		Description: fmt.Sprintf("Navigate to the \"%s\" screen of the app", name),
		Priority:    s.policy.Priority(entities.ElementScreen, &entities.Element{Text: screen.Name, ID: screen.ID}),
		Category:    entities.ElementScreen,
		Steps:       steps,
	})
}
