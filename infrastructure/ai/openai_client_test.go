package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai_testgen/domain/entities"

	"github.com/sirupsen/logrus"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c, err := NewOpenAIClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, logger)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return c
}

func reply(w http.ResponseWriter, content string) {
	var resp APIResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	_ = json.NewEncoder(w).Encode(resp)
}

func TestSuggestTestCases(t *testing.T) {
	var gotPrompt, gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Messages[1].Content
		reply(w, "Here you go:\n```json\n[{\"title\": \"<b>Login</b> with bad password\", \"priority\": \"High\", \"steps\": [{\"action\": \"Click the \\\"Login\\\" button\", \"expected\": \"Error shown\"}]}]\n```")
	})

	snapshot := entities.PageSnapshot{
		URL:     "https://x.test",
		Title:   "Home",
		Buttons: []entities.Element{{Text: "Login"}},
		Inputs:  []entities.Element{{Name: "email", Placeholder: "Email"}},
	}
	existing := []entities.TestCase{{ID: "TC_BTN_1", Title: "Verify Login button"}}

	got, err := c.SuggestTestCases(context.Background(), snapshot, existing)
	if err != nil {
		t.Fatalf("SuggestTestCases: %v", err)
	}

	if gotAuth != "Bearer sk-test" || gotPath != "/v1/chat/completions" {
		t.Errorf("auth=%q path=%q", gotAuth, gotPath)
	}
	for _, want := range []string{"Page Title: Home", "- Login", "Email (name=email)", "Verify Login button"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if len(got) != 1 {
		t.Fatalf("got %d suggestions", len(got))
	}
	if got[0].Title != "Login with bad password" {
		t.Errorf("title not sanitized: %q", got[0].Title)
	}
	if got[0].Steps[0].Action != `Click the "Login" button` {
		t.Errorf("action = %q", got[0].Steps[0].Action)
	}
}

func TestSuggestTestCases_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
			wantErr: "429",
		},
		{
			name:    "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) },
			wantErr: "no response",
		},
		{
			name:    "not json",
			handler: func(w http.ResponseWriter, r *http.Request) { reply(w, "I cannot help with that") },
			wantErr: "failed to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.SuggestTestCases(context.Background(), entities.PageSnapshot{URL: "https://x.test", Title: "T"}, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseSuggestions_WrappedObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	got, err := c.parseSuggestions(`{"testCases": [{"title": "A", "steps": [{"action": "x"}]}, {"title": "B"}]}`)
	if err != nil {
		t.Fatalf("parseSuggestions: %v", err)
	}
	if len(got) != 2 || got[1].Title != "B" {
		t.Errorf("got %+v", got)
	}
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(Config{}, logrus.New()); err == nil {
		t.Error("expected error without api key")
	}
}
