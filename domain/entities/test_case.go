package entities

// Priority of a test case
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority - maps free text to a Priority, defaulting to Medium
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityHigh, "high", "HIGH", "critical", "Critical":
		return PriorityHigh
	case PriorityLow, "low", "LOW":
		return PriorityLow
	}
	return PriorityMedium
}

// TestStep is one numbered action of a test case
type TestStep struct {
	Step     int     `json:"step"`
	Action   string  `json:"action"`
	Expected string  `json:"expected"`
	Phrase   *Phrase `json:"phrase,omitempty"`
}

// TestCase is a structured, steppable verification scenario
type TestCase struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority"`
	Category    ElementType `json:"category,omitempty"`
	Steps       []TestStep  `json:"steps"`
}

// Renumber - rewrites step numbers to the contiguous sequence 1..n
func (tc *TestCase) Renumber() {
	for i := range tc.Steps {
		tc.Steps[i].Step = i + 1
	}
}
