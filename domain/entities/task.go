package entities

import "time"

// RunStatus represents the outcome of an executed step or test case
type RunStatus string

const (
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusSkipped RunStatus = "skipped"
)

// CaseResult is the outcome of executing one test case
type CaseResult struct {
	TestCaseID string       `json:"testCaseId"`
	Title      string       `json:"title"`
	Status     RunStatus    `json:"status"`
	Steps      []StepResult `json:"steps"`
}

// RunReport summarizes a run over a set of test cases
type RunReport struct {
	URL        string       `json:"url"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Results    []CaseResult `json:"results"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
}

// Tally - recomputes the passed/failed/skipped counters
func (r *RunReport) Tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case RunStatusPassed:
			r.Passed++
		case RunStatusFailed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
}
