package interfaces

import (
	"ai_testgen/domain/entities"
	"context"
)

// Extractor captures a PageSnapshot from a live target
type Extractor interface {
	// Extract navigates to url and returns its interactive structure
	Extract(ctx context.Context, url string) (*entities.PageSnapshot, error)
}

// BrowserController defines the interface for driving a page while executing test cases
type BrowserController interface {
	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// Click clicks on an element by selector or visible text
	Click(ctx context.Context, target string) error

	// Type types text into an input field
	Type(ctx context.Context, target string, text string) error

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// IsTextVisible checks whether text is visible on the page
	IsTextVisible(ctx context.Context, text string) (bool, error)

	// Count returns the number of elements matching a CSS selector
	Count(ctx context.Context, selector string) (int, error)

	// Close closes the browser
	Close() error
}
