package runner

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ai_testgen/domain/entities"

	"github.com/sirupsen/logrus"
)

// fakeBrowser records calls and answers from canned page state
type fakeBrowser struct {
	calls   []string
	title   string
	visible map[string]bool
	counts  map[string]int
	fail    map[string]error
	block   bool
}

func (f *fakeBrowser) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeBrowser) Navigate(ctx context.Context, url string) error {
	return f.record("navigate " + url)
}

func (f *fakeBrowser) Click(ctx context.Context, target string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.record("click " + target)
}

func (f *fakeBrowser) Type(ctx context.Context, target, text string) error {
	return f.record("type " + target + "=" + text)
}

func (f *fakeBrowser) Title(ctx context.Context) (string, error) {
	return f.title, f.record("title")
}

func (f *fakeBrowser) IsTextVisible(ctx context.Context, text string) (bool, error) {
	return f.visible[text], f.record("visible " + text)
}

func (f *fakeBrowser) Count(ctx context.Context, selector string) (int, error) {
	return f.counts[selector], f.record("count " + selector)
}

func (f *fakeBrowser) Close() error { return nil }

func newTestRunner(b *fakeBrowser, timeout time.Duration) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(b, logger, Config{StepTimeout: timeout})
}

func step(n int, action, expected string, p *entities.Phrase) entities.TestStep {
	return entities.TestStep{Step: n, Action: action, Expected: expected, Phrase: p}
}

func TestRun_PassingCase(t *testing.T) {
	b := &fakeBrowser{title: "Home Page", counts: map[string]int{"a[href]": 3}}
	r := newTestRunner(b, time.Second)

	cases := []entities.TestCase{{
		ID: "TC_1",
		Steps: []entities.TestStep{
			step(1, "Navigate to https://x.test", "", &entities.Phrase{Kind: entities.PhraseNavigate, URL: "https://x.test"}),
			step(2, "Verify page title", `Title is "Home"`, &entities.Phrase{Kind: entities.PhraseVerifyTitle, Text: "Home"}),
			step(3, "Verify link count", "", &entities.Phrase{Kind: entities.PhraseVerifyCount, Selector: "a[href]", Count: 3}),
			step(4, `Enter "q" into input field with name "search"`, "", nil),
		},
	}}

	report := r.Run(context.Background(), "https://x.test", cases)
	if report.Passed != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	want := []string{"navigate https://x.test", "title", "count a[href]", "type search=q"}
	if strings.Join(b.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
	for _, sr := range report.Results[0].Steps {
		if sr.Status != entities.RunStatusPassed {
			t.Errorf("step %d = %s (%s)", sr.Step, sr.Status, sr.Error)
		}
	}
	if report.Results[0].Steps[3].Operation != entities.OpInput {
		t.Errorf("free text step operation = %s", report.Results[0].Steps[3].Operation)
	}
}

func TestRun_FailureSkipsRemainingSteps(t *testing.T) {
	b := &fakeBrowser{fail: map[string]error{"click #login": errors.New("no such element")}}
	r := newTestRunner(b, time.Second)

	cases := []entities.TestCase{
		{
			ID: "TC_BTN_1",
			Steps: []entities.TestStep{
				step(1, "Navigate", "", &entities.Phrase{Kind: entities.PhraseNavigate}),
				step(2, "Click", "", &entities.Phrase{Kind: entities.PhraseClickButton, Target: "Login", Selector: "#login"}),
				step(3, "Verify", "", &entities.Phrase{Kind: entities.PhraseVerifyVisible, Text: "Welcome"}),
			},
		},
		{
			ID:    "TC_BTN_2",
			Steps: []entities.TestStep{step(1, "Navigate", "", &entities.Phrase{Kind: entities.PhraseNavigate})},
		},
	}

	report := r.Run(context.Background(), "https://x.test", cases)
	if report.Failed != 1 || report.Passed != 1 {
		t.Fatalf("report = %+v", report)
	}
	steps := report.Results[0].Steps
	if steps[1].Status != entities.RunStatusFailed || !strings.Contains(steps[1].Error, "no such element") {
		t.Errorf("step 2 = %+v", steps[1])
	}
	if steps[2].Status != entities.RunStatusSkipped {
		t.Errorf("step 3 = %s, want skipped", steps[2].Status)
	}
	if b.calls[0] != "navigate https://x.test" {
		t.Errorf("navigation without url did not use the page url: %v", b.calls)
	}
}

func TestRun_StepTimeout(t *testing.T) {
	b := &fakeBrowser{block: true}
	r := newTestRunner(b, 10*time.Millisecond)

	cases := []entities.TestCase{{
		ID:    "TC_1",
		Steps: []entities.TestStep{step(1, "Click", "", &entities.Phrase{Kind: entities.PhraseClickButton, Target: "Go"})},
	}}

	report := r.Run(context.Background(), "https://x.test", cases)
	sr := report.Results[0].Steps[0]
	if sr.Status != entities.RunStatusFailed || !strings.Contains(sr.Error, "did not respond in time") {
		t.Errorf("step = %+v", sr)
	}
}

func TestRun_ManualAndVerifyFailures(t *testing.T) {
	b := &fakeBrowser{title: "Other", visible: map[string]bool{}}
	r := newTestRunner(b, time.Second)

	cases := []entities.TestCase{
		{
			ID:    "TC_GENERIC_4",
			Steps: []entities.TestStep{step(1, "Resize", "", &entities.Phrase{Kind: entities.PhraseManual, Text: "Resize"})},
		},
		{
			ID:    "TC_PAGE_1",
			Steps: []entities.TestStep{step(1, "Verify page title", "", &entities.Phrase{Kind: entities.PhraseVerifyTitle, Text: "Home"})},
		},
		{
			ID:    "TC_X",
			Steps: []entities.TestStep{step(1, "Verify", "", &entities.Phrase{Kind: entities.PhraseVerifyVisible, Text: "Hello"})},
		},
	}

	report := r.Run(context.Background(), "https://x.test", cases)
	if report.Results[0].Status != entities.RunStatusSkipped {
		t.Errorf("manual case = %s", report.Results[0].Status)
	}
	if report.Results[1].Status != entities.RunStatusFailed || report.Results[2].Status != entities.RunStatusFailed {
		t.Errorf("verify cases = %s %s", report.Results[1].Status, report.Results[2].Status)
	}
	if report.Skipped != 1 || report.Failed != 2 {
		t.Errorf("tally = %+v", report)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	b := &fakeBrowser{}
	r := newTestRunner(b, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := r.Run(ctx, "https://x.test", []entities.TestCase{{
		ID:    "TC_1",
		Steps: []entities.TestStep{step(1, "Navigate", "", &entities.Phrase{Kind: entities.PhraseNavigate})},
	}})
	if len(b.calls) != 0 {
		t.Errorf("browser called after cancel: %v", b.calls)
	}
	if report.Results[0].Steps[0].Status != entities.RunStatusSkipped {
		t.Errorf("step = %+v", report.Results[0].Steps[0])
	}
}
