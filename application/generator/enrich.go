package generator

import (
	"ai_testgen/domain/entities"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// enrich - asks the AI collaborator for extra cases. Failures never fail the
// request; they come back as a note.
func (s *Service) enrich(ctx context.Context, snapshot entities.PageSnapshot, existing []entities.TestCase) ([]entities.TestCase, string) {
	if s.ai == nil {
		return nil, "AI enrichment is not configured"
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()

	suggestions, err := s.ai.SuggestTestCases(aiCtx, snapshot, existing)
	if err != nil {
		if errors.Is(aiCtx.Err(), context.DeadlineExceeded) {
			err = &entities.ExternalCollaboratorTimeout{Collaborator: "AI model", Err: err}
		}
		s.logger.WithError(err).Warn("AI enrichment failed")
		return nil, fmt.Sprintf("AI suggestions unavailable: %v", err)
	}

	cases := SuggestionCases(suggestions)
	s.logger.WithFields(logrus.Fields{
		"url":         snapshot.URL,
		"suggestions": len(suggestions),
		"accepted":    len(cases),
	}).Info("AI enrichment complete")

	return cases, ""
}

// SuggestionCases - converts AI suggestions into TC_AI_n cases, dropping
// suggestions without a title or steps
func SuggestionCases(suggestions []entities.Suggestion) []entities.TestCase {
	var cases []entities.TestCase
	for _, sg := range suggestions {
		title := strings.TrimSpace(sg.Title)
		if title == "" {
			continue
		}

		tc := entities.TestCase{
			ID:          fmt.Sprintf("TC_AI_%d", len(cases)+1),
			Title:       title,
			Description: strings.TrimSpace(sg.Description),
			Priority:    entities.ParsePriority(sg.Priority),
			Category:    entities.CategoryAI,
		}
		for _, st := range sg.Steps {
			action := strings.TrimSpace(st.Action)
			if action == "" {
				continue
			}
			tc.Steps = append(tc.Steps, entities.TestStep{
				Action:   action,
				Expected: strings.TrimSpace(st.Expected),
			})
		}
		if len(tc.Steps) == 0 {
			continue
		}
		tc.Renumber()
		cases = append(cases, tc)
	}
	return cases
}
