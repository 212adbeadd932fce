package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai_testgen/application/generator"
	"ai_testgen/application/session"
	"ai_testgen/application/synthesizer"
	"ai_testgen/infrastructure/policy"
	"ai_testgen/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	synth := synthesizer.New(policy.NewPriorityPolicy(logger), logger)
	sessions := session.NewManager(storage.NewMemoryStore(), logger, session.Config{})
	svc := generator.NewService(synth, sessions, logger, generator.Config{})

	srv := httptest.NewServer(NewServer(svc, logger, 2).Handler())
	t.Cleanup(srv.Close)
	return srv
}

const snapshotJSON = `{"url":"https://x.test","title":"Home",
	"buttons":[{"text":"Login"},{"text":"Help"}],"links":[{"text":"About","href":"https://x.test/about"}],
	"inputs":[{"name":"q"}],"forms":[]}`

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	} else {
		out = map[string]any{"body": string(raw)}
	}
	return resp, out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, out := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || out["status"] != "ok" {
		t.Errorf("got %d %v", resp.StatusCode, out)
	}
}

func TestAnalyze_Full(t *testing.T) {
	srv := newTestServer(t)
	resp, out := do(t, http.MethodPost, srv.URL+"/api/analyze", `{"snapshot":`+snapshotJSON+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, out)
	}
	if out["success"] != true || out["totalCount"] != float64(9) {
		t.Errorf("got %v", out)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	_, first := do(t, http.MethodPost, srv.URL+"/api/analyze", `{"mode":"first","snapshot":`+snapshotJSON+`}`)
	id, _ := first["sessionId"].(string)
	if id == "" || len(first["testCases"].([]any)) != 2 || first["hasMoreElements"] != true {
		t.Fatalf("first = %v", first)
	}

	_, next := do(t, http.MethodPost, srv.URL+"/api/analyze", `{"mode":"next","sessionId":"`+id+`","batchSize":100}`)
	if next["totalCount"] != float64(9) || next["hasMoreElements"] != false {
		t.Errorf("next = %v", next)
	}

	resp, got := do(t, http.MethodGet, srv.URL+"/api/sessions/"+id, "")
	if resp.StatusCode != http.StatusOK || got["session"] == nil {
		t.Errorf("get session: %d %v", resp.StatusCode, got)
	}

	resp, doc := do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/export?format=maestro", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="maestro-flow.yaml"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(doc["body"].(string), "launchUrl") {
		t.Errorf("body = %v", doc["body"])
	}

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/sessions/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status %d", resp.StatusCode)
	}
	resp, out := do(t, http.MethodGet, srv.URL+"/api/sessions/"+id, "")
	if resp.StatusCode != http.StatusNotFound || out["code"] != CodeSessionNotFound {
		t.Errorf("after delete: %d %v", resp.StatusCode, out)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed json", `{"snapshot":`, http.StatusBadRequest, CodeBadRequest},
		{"unknown mode", `{"mode":"all","url":"https://x.test"}`, http.StatusBadRequest, CodeBadRequest},
		{"negative batch", `{"mode":"first","batchSize":-1,"snapshot":` + snapshotJSON + `}`, http.StatusBadRequest, CodeBadRequest},
		{"missing title", `{"snapshot":{"url":"https://x.test"}}`, http.StatusBadRequest, CodeInvalidSnapshot},
		{"no input", `{}`, http.StatusBadRequest, CodeInvalidSnapshot},
		{"unknown session", `{"mode":"next","sessionId":"sess_nope"}`, http.StatusNotFound, CodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, http.MethodPost, srv.URL+"/api/analyze", tt.body)
			if resp.StatusCode != tt.wantCode || out["code"] != tt.wantErr || out["success"] != false {
				t.Errorf("got %d %v", resp.StatusCode, out)
			}
		})
	}
}

func TestExportCases_Stateless(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"format": "csv",
		"url":    "https://x.test",
		"title":  "Home",
		"testCases": []map[string]any{{
			"id":       "TC_1",
			"title":    `He said "hi"`,
			"priority": "High",
			"steps":    []map[string]any{{"step": 1, "action": "Open", "expected": "Opens"}},
		}},
	})
	resp, err := http.Post(srv.URL+"/api/export", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(raw), `"He said ""hi"""`) {
		t.Errorf("body = %s", raw)
	}
}

func TestRunSession_NoBrowser(t *testing.T) {
	srv := newTestServer(t)
	_, first := do(t, http.MethodPost, srv.URL+"/api/analyze", `{"mode":"first","snapshot":`+snapshotJSON+`}`)

	resp, out := do(t, http.MethodPost, srv.URL+"/api/sessions/"+first["sessionId"].(string)+"/run", "")
	if resp.StatusCode != http.StatusInternalServerError || out["code"] != CodeInternal {
		t.Errorf("got %d %v", resp.StatusCode, out)
	}
}
