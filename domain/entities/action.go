package entities

import "time"

// Operation represents the driver operation a test step resolves to
type Operation string

const (
	OpNavigate Operation = "navigate"
	OpClick    Operation = "click"
	OpInput    Operation = "input"
	OpVerify   Operation = "verify"
	OpNone     Operation = "none"
)

// StepResult represents the result of executing one test step
type StepResult struct {
	Step      int           `json:"step"`
	Operation Operation     `json:"operation"`
	Status    RunStatus     `json:"status"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}
