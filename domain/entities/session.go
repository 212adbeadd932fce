package entities

import "time"

// Cursor points at the next unprocessed item of a snapshot
type Cursor struct {
	ElementType  ElementType `json:"elementType"`
	ElementIndex int         `json:"elementIndex"`
}

// ProcessedCounts tracks how many elements of each category were turned into test cases
type ProcessedCounts struct {
	Page    int `json:"page"`
	Buttons int `json:"buttons"`
	Inputs  int `json:"inputs"`
	Links   int `json:"links"`
	Forms   int `json:"forms"`
	Screens int `json:"screens"`
}

// Add - increments the counter for an element type
func (c *ProcessedCounts) Add(t ElementType) {
	switch t {
	case ElementPage:
		c.Page++
	case ElementButton:
		c.Buttons++
	case ElementInput:
		c.Inputs++
	case ElementLink:
		c.Links++
	case ElementForm:
		c.Forms++
	case ElementScreen:
		c.Screens++
	}
}

// SessionState is the accumulated state of an incremental generation session
type SessionState struct {
	SessionID       string          `json:"sessionId"`
	Snapshot        PageSnapshot    `json:"snapshot"`
	ProcessedCounts ProcessedCounts `json:"processedCounts"`
	TestCases       []TestCase      `json:"testCases"`
	Cursor          Cursor          `json:"cursor"`
	HasMore         bool            `json:"hasMore"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ExpiresAt       time.Time       `json:"expiresAt"`
}

// Expired - reports whether the session's TTL elapsed
func (s *SessionState) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
