package entities

// SuggestedStep is a step proposed by the AI model
type SuggestedStep struct {
	Action   string `json:"action"`
	Expected string `json:"expected"`
}

// Suggestion is a test case proposed by the AI model
type Suggestion struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Steps       []SuggestedStep `json:"steps"`
}
