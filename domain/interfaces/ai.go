package interfaces

import (
	"ai_testgen/domain/entities"
	"context"
)

// AI represents the interface for the text generation model
type AI interface {
	// SuggestTestCases asks the model for additional test cases for a page
	SuggestTestCases(ctx context.Context, snapshot entities.PageSnapshot, existing []entities.TestCase) ([]entities.Suggestion, error)
}
