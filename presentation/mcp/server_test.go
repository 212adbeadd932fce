package mcp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"ai_testgen/application/generator"
	"ai_testgen/application/session"
	"ai_testgen/application/synthesizer"
	"ai_testgen/infrastructure/policy"
	"ai_testgen/infrastructure/storage"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// connect starts srv on an in-memory transport and returns a client session
func connect(t *testing.T) *gomcp.ClientSession {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	synth := synthesizer.New(policy.NewPriorityPolicy(logger), logger)
	sessions := session.NewManager(storage.NewMemoryStore(), logger, session.Config{})
	srv := NewServer(generator.NewService(synth, sessions, logger, generator.Config{}), logger, 3, "test")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	t1, t2 := gomcp.NewInMemoryTransports()
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *gomcp.ClientSession, name string, args map[string]any, out any) *gomcp.CallToolResult {
	t.Helper()
	result, err := cs.CallTool(context.Background(), &gomcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	if out != nil && !result.IsError {
		data, _ := json.Marshal(result.StructuredContent)
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode %s output: %v", name, err)
		}
	}
	return result
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

var snapshot = map[string]any{
	"url":     "https://x.test",
	"title":   "Home",
	"buttons": []any{map[string]any{"text": "Login"}, map[string]any{"text": "Help"}},
	"links":   []any{map[string]any{"text": "About", "href": "https://x.test/about"}},
	"inputs":  []any{map[string]any{"name": "q"}},
}

func TestGenerateFull(t *testing.T) {
	cs := connect(t)

	var out generator.Response
	result := call(t, cs, "generate_test_cases", map[string]any{"snapshot": snapshot}, &out)
	if result.IsError {
		t.Fatalf("error: %s", extractText(result))
	}
	if out.TotalCount != 9 || len(out.TestCases) != 9 || out.SessionID != "" {
		t.Errorf("got total=%d cases=%d session=%q", out.TotalCount, len(out.TestCases), out.SessionID)
	}
}

func TestIncrementalSessionAndExport(t *testing.T) {
	cs := connect(t)

	var first generator.Response
	call(t, cs, "generate_test_cases", map[string]any{"snapshot": snapshot, "mode": "first"}, &first)
	if first.SessionID == "" || len(first.TestCases) != 3 || !first.HasMoreElements {
		t.Fatalf("first = %+v", first)
	}

	total := len(first.TestCases)
	for more := true; more; {
		var next generator.Response
		result := call(t, cs, "next_test_cases", map[string]any{"session_id": first.SessionID}, &next)
		if result.IsError {
			t.Fatalf("next: %s", extractText(result))
		}
		total += len(next.TestCases)
		more = next.HasMoreElements
	}
	if total != 9 {
		t.Errorf("incremental total = %d", total)
	}

	var doc exportOutput
	call(t, cs, "export_test_cases", map[string]any{"session_id": first.SessionID, "format": "testrail"}, &doc)
	if doc.Filename != "testrail-import.csv" || strings.Count(doc.Body, "\"Functional\"") != 9 {
		t.Errorf("export = %s\n%s", doc.Filename, doc.Body)
	}
}

func TestToolErrors(t *testing.T) {
	cs := connect(t)

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		wantErr string
	}{
		{"unknown session", "next_test_cases", map[string]any{"session_id": "sess_nope"}, "not found"},
		{"missing session", "export_test_cases", map[string]any{}, "session_id is required"},
		{"invalid snapshot", "generate_test_cases", map[string]any{"snapshot": map[string]any{"url": "https://x.test"}}, "title"},
		{"next mode", "generate_test_cases", map[string]any{"mode": "next"}, "next_test_cases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, cs, tt.tool, tt.args, nil)
			if !result.IsError || !strings.Contains(extractText(result), tt.wantErr) {
				t.Errorf("got error=%v text=%q", result.IsError, extractText(result))
			}
		})
	}
}
