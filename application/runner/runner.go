// Package runner executes simplified versions of test cases against a live
// page through a BrowserController.
package runner

import (
	"ai_testgen/application/actiontext"
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultStepTimeout bounds a single browser operation
const DefaultStepTimeout = 15 * time.Second

type Config struct {
	StepTimeout time.Duration
}

type Runner struct {
	browser interfaces.BrowserController
	logger  *logrus.Logger
	cfg     Config
	now     func() time.Time
}

// New - creates a runner driving browser
func New(browser interfaces.BrowserController, logger *logrus.Logger, cfg Config) *Runner {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}
	return &Runner{
		browser: browser,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run - executes every case in order. Step failures are recorded in the
// report; the remaining steps of a failed case are skipped.
func (r *Runner) Run(ctx context.Context, url string, cases []entities.TestCase) *entities.RunReport {
	report := &entities.RunReport{URL: url, StartedAt: r.now()}

	for _, tc := range cases {
		result := r.runCase(ctx, url, tc)
		report.Results = append(report.Results, result)

		r.logger.WithFields(logrus.Fields{
			"case":   tc.ID,
			"status": result.Status,
		}).Info("Test case executed")
	}

	report.FinishedAt = r.now()
	report.Tally()
	return report
}

func (r *Runner) runCase(ctx context.Context, url string, tc entities.TestCase) entities.CaseResult {
	result := entities.CaseResult{TestCaseID: tc.ID, Title: tc.Title, Status: entities.RunStatusSkipped}
	failed := false

	for _, step := range tc.Steps {
		phrase := actiontext.Resolve(step)
		sr := entities.StepResult{Step: step.Step, Operation: actiontext.Operation(phrase.Kind)}

		switch {
		case failed:
			sr.Status = entities.RunStatusSkipped
			sr.Message = "previous step failed"
		case ctx.Err() != nil:
			sr.Status = entities.RunStatusSkipped
			sr.Message = "run canceled"
		default:
			start := r.now()
			sr.Message, sr.Status = r.execute(ctx, url, phrase)
			sr.Duration = r.now().Sub(start)
		}

		switch sr.Status {
		case entities.RunStatusFailed:
			failed = true
			sr.Error, sr.Message = sr.Message, ""
			result.Status = entities.RunStatusFailed
		case entities.RunStatusPassed:
			if result.Status == entities.RunStatusSkipped {
				result.Status = entities.RunStatusPassed
			}
		}
		result.Steps = append(result.Steps, sr)
	}
	return result
}

// execute - runs one resolved step under the step timeout
func (r *Runner) execute(ctx context.Context, url string, p entities.Phrase) (string, entities.RunStatus) {
	stepCtx, cancel := context.WithTimeout(ctx, r.cfg.StepTimeout)
	defer cancel()

	msg, err := r.dispatch(stepCtx, url, p)
	if errors.Is(err, errManual) {
		return msg, entities.RunStatusSkipped
	}
	if err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			err = &entities.ExternalCollaboratorTimeout{Collaborator: "browser", Err: err}
		}
		return err.Error(), entities.RunStatusFailed
	}
	return msg, entities.RunStatusPassed
}

var errManual = errors.New("manual step")

func (r *Runner) dispatch(ctx context.Context, url string, p entities.Phrase) (string, error) {
	switch p.Kind {
	case entities.PhraseNavigate:
		target := p.URL
		if target == "" {
			target = url
		}
		return "navigated to " + target, r.browser.Navigate(ctx, target)

	case entities.PhraseClickButton, entities.PhraseClickLink, entities.PhraseSubmitForm, entities.PhraseOpenScreen:
		target := firstNonEmpty(p.Selector, p.Target)
		if target == "" {
			return "", fmt.Errorf("step does not name an element to click")
		}
		return "clicked " + target, r.browser.Click(ctx, target)

	case entities.PhraseEnterText:
		target := firstNonEmpty(p.Selector, p.Field, p.Target)
		value := firstNonEmpty(p.Value, actiontext.DefaultValue)
		return fmt.Sprintf("typed %q into %s", value, target), r.browser.Type(ctx, target, value)

	case entities.PhraseVerifyTitle:
		title, err := r.browser.Title(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read title: %w", err)
		}
		if p.Text == "" && strings.TrimSpace(title) == "" {
			return "", fmt.Errorf("page has no title")
		}
		if p.Text != "" && !strings.Contains(title, p.Text) {
			return "", fmt.Errorf("title %q does not contain %q", title, p.Text)
		}
		return fmt.Sprintf("title is %q", title), nil

	case entities.PhraseVerifyVisible:
		if p.Text == "" {
			return "nothing to verify", errManual
		}
		visible, err := r.browser.IsTextVisible(ctx, p.Text)
		if err != nil {
			return "", fmt.Errorf("failed to check text: %w", err)
		}
		if !visible {
			return "", fmt.Errorf("text %q is not visible", p.Text)
		}
		return fmt.Sprintf("%q is visible", p.Text), nil

	case entities.PhraseVerifyCount:
		if p.Selector == "" {
			return "no selector to count", errManual
		}
		n, err := r.browser.Count(ctx, p.Selector)
		if err != nil {
			return "", fmt.Errorf("failed to count elements: %w", err)
		}
		if n != p.Count {
			return "", fmt.Errorf("found %d elements, expected %d", n, p.Count)
		}
		return fmt.Sprintf("found %d elements", n), nil
	}
	return "manual check: " + p.Text, errManual
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
