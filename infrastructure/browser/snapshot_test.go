package browser

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

func TestDecodeSnapshot(t *testing.T) {
	raw := `{"url":"https://x.test/login","title":"","buttons":[{"text":"Login","selector":"#login","type":"submit"}],
		"links":[],"inputs":[{"text":"","name":"email","type":"email"}],"forms":[{"id":"f","inputs":[{"name":"email"}],"submitText":"Login"}]}`

	snap, err := decodeSnapshot(raw, "https://x.test")
	if err != nil {
		t.Fatalf("decodeSnapshot: %v", err)
	}
	if snap.Title != "x.test" {
		t.Errorf("title fallback = %q", snap.Title)
	}
	if snap.Platform != entities.PlatformWeb || snap.CapturedAt.IsZero() {
		t.Errorf("platform=%q capturedAt=%v", snap.Platform, snap.CapturedAt)
	}
	if len(snap.Buttons) != 1 || snap.Buttons[0].Target() != "#login" {
		t.Errorf("buttons = %+v", snap.Buttons)
	}
	if len(snap.Forms) != 1 || snap.Forms[0].SubmitText != "Login" {
		t.Errorf("forms = %+v", snap.Forms)
	}

	blank, err := decodeSnapshot(`{"url":"about:blank","title":"Hi"}`, "https://y.test")
	if err != nil || blank.URL != "https://y.test" {
		t.Errorf("got %+v, %v", blank, err)
	}

	if _, err := decodeSnapshot("undefined", "https://x.test"); err == nil {
		t.Error("expected decode error")
	}
}

func TestIsSelector(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#login", true},
		{`input[name="q"]`, true},
		{"//button[1]", true},
		{".btn-primary", true},
		{"form > button", true},
		{"Login", false},
		{"Sign up now", false},
		{". not a class", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := isSelector(tt.in); got != tt.want {
				t.Errorf("isSelector(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFieldSelector(t *testing.T) {
	if got := fieldSelector("#email"); got != "#email" {
		t.Errorf("selector changed: %q", got)
	}
	got := fieldSelector("email")
	for _, want := range []string{`[name="email"]`, `[id="email"]`, `[placeholder="email"]`} {
		if !strings.Contains(got, want) {
			t.Errorf("%q missing %q", got, want)
		}
	}
}

func TestXPathLiteral(t *testing.T) {
	tests := map[string]string{
		"Login":       "'Login'",
		"Don't":       `"Don't"`,
		`Say "don't"`: `concat('Say "don', "'", 't"')`,
	}
	for in, want := range tests {
		if got := xpathLiteral(in); got != want {
			t.Errorf("xpathLiteral(%q) = %s, want %s", in, got, want)
		}
	}
	if got := textXPath("Go"); got != "//*[contains(normalize-space(text()), 'Go')]" {
		t.Errorf("textXPath = %s", got)
	}
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	err := withContext(ctx, func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v", err)
	}

	want := errors.New("boom")
	if err := withContext(context.Background(), func() error { return want }); err != want {
		t.Errorf("got %v", err)
	}
}

func TestTimeoutMillis(t *testing.T) {
	if got := timeoutMillis(context.Background(), 2*time.Second); got != 2000 {
		t.Errorf("no deadline = %v", got)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if got := timeoutMillis(ctx, time.Second); got <= 1000 || got > 60000 {
		t.Errorf("deadline = %v", got)
	}
}

func TestFactories_UnknownDriver(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if _, err := NewExtractor("netscape", Options{}, logger); err == nil {
		t.Error("expected error from NewExtractor")
	}
	if _, err := NewController("netscape", Options{}, logger); err == nil {
		t.Error("expected error from NewController")
	}
}
