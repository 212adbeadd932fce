package synthesizer

import (
	"ai_testgen/domain/entities"
	"fmt"

	"github.com/sirupsen/logrus"
)

func manualStep(action, expected string) entities.TestStep {
	return entities.TestStep{
		Action:   action,
		Expected: expected,
		Phrase:   &entities.Phrase{Kind: entities.PhraseManual, Text: action},
	}
}

// Fallback - returns the generic case set used when a page could not be analyzed.
// reason is recorded in the description of the page load case.
func (s *Synthesizer) Fallback(url, reason string) []entities.TestCase {
	s.logger.WithFields(logrus.Fields{
		"url":    url,
		"reason": reason,
	}).Warn("Using generic test cases")

	description := fmt.Sprintf("Open %s and confirm the page renders", url)
	if reason != "" {
		description += fmt.Sprintf(" (page structure unavailable: %s)", reason)
	}

	cases := []entities.TestCase{
		{
			ID:          caseID("GENERIC", 1),
			Title:       "Verify page loads successfully",
			Description: description,
			Priority:    entities.PriorityHigh,
			Steps: []entities.TestStep{
				navigateTo(url, false),
				{
					Action:   "Verify page title",
					Expected: "Page title is displayed",
					Phrase:   &entities.Phrase{Kind: entities.PhraseVerifyTitle},
				},
			},
		},
		{
			ID:          caseID("GENERIC", 2),
			Title:       "Verify main navigation works",
			Description: "Follow the first navigation link on the page",
			Priority:    entities.PriorityMedium,
			Steps: []entities.TestStep{
				navigateTo(url, false),
				{
					Action:   "Click the first navigation link",
					Expected: "Linked page opens",
					Phrase:   &entities.Phrase{Kind: entities.PhraseClickLink, Selector: "nav a"},
				},
			},
		},
		{
			ID:          caseID("GENERIC", 3),
			Title:       "Verify form validation",
			Description: "Submit a form without filling required fields",
			Priority:    entities.PriorityHigh,
			Steps: []entities.TestStep{
				navigateTo(url, false),
				{
					Action:   "Submit the first form without filling required fields",
					Expected: "Validation messages are displayed",
					Phrase:   &entities.Phrase{Kind: entities.PhraseSubmitForm, Selector: `form [type="submit"]`},
				},
			},
		},
		{
			ID:          caseID("GENERIC", 4),
			Title:       "Verify responsive layout",
			Description: "Check the page on a narrow viewport",
			Priority:    entities.PriorityLow,
			Steps: []entities.TestStep{
				navigateTo(url, false),
				manualStep("Resize the viewport to 375px width", "Layout adapts without horizontal scrolling"),
			},
		},
		{
			ID:          caseID("GENERIC", 5),
			Title:       "Verify there are no broken links",
			Description: "Request every link on the page",
			Priority:    entities.PriorityMedium,
			Steps: []entities.TestStep{
				navigateTo(url, false),
				manualStep("Request every link on the page", "No link returns an error status"),
			},
		},
	}

	for i := range cases {
		cases[i].Category = entities.CategoryGeneric
		cases[i].Renumber()
	}
	return cases
}
