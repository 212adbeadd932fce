// Package mcp exposes test case generation as MCP tools so coding assistants
// can analyze pages and export cases over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"ai_testgen/application/generator"
	"ai_testgen/domain/entities"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	server    *gomcp.Server
	svc       *generator.Service
	logger    *logrus.Logger
	batchSize int
}

// NewServer - registers the generation tools on a new MCP server
func NewServer(svc *generator.Service, logger *logrus.Logger, batchSize int, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		svc:       svc,
		logger:    logger,
		batchSize: batchSize,
	}
	s.server = gomcp.NewServer(&gomcp.Implementation{Name: "ai_testgen", Version: version}, nil)
	s.registerTools()
	return s
}

// Run serves on stdio until the client disconnects or ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying server for in-memory transports in tests
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

type generateInput struct {
	URL       string `json:"url,omitempty" jsonschema:"page URL to extract; ignored when snapshot is given"`
	Snapshot  any    `json:"snapshot,omitempty" jsonschema:"pre-captured page snapshot {url, title, buttons, links, inputs, forms}"`
	Mode      string `json:"mode,omitempty" jsonschema:"full (default) returns every case, first starts an incremental session"`
	BatchSize int    `json:"batch_size,omitempty" jsonschema:"cases per batch in first mode"`
	UseAI     bool   `json:"use_ai,omitempty" jsonschema:"append AI suggested cases in full mode"`
}

type nextInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session returned by generate_test_cases in first mode"`
	BatchSize int    `json:"batch_size,omitempty" jsonschema:"cases per batch"`
}

type exportInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session whose cases are exported"`
	Format    string `json:"format,omitempty" jsonschema:"json, maestro, katalon, testrail, csv, html, txt, markdown, katalon-script or playwright"`
}

type exportOutput struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "generate_test_cases",
		Description: "Generate functional test cases for a web page or app snapshot. Mode first returns the first batch and a session_id for next_test_cases.",
	}, s.handleGenerate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "next_test_cases",
		Description: "Return the next batch of test cases for an incremental session.",
	}, s.handleNext)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "export_test_cases",
		Description: "Render every test case of a session in an export format such as maestro, katalon or testrail.",
	}, s.handleExport)
}

func (s *Server) handleGenerate(ctx context.Context, _ *gomcp.CallToolRequest, input generateInput) (*gomcp.CallToolResult, generator.Response, error) {
	mode, err := generator.ParseMode(input.Mode)
	if err != nil {
		return errorResult(err.Error()), generator.Response{}, nil
	}
	if mode == generator.ModeNext {
		return errorResult("use next_test_cases to continue a session"), generator.Response{}, nil
	}

	req := generator.Request{
		URL:       input.URL,
		Mode:      mode,
		BatchSize: s.batch(input.BatchSize),
		UseAI:     input.UseAI,
	}
	if input.Snapshot != nil {
		snapshot, err := toSnapshot(input.Snapshot)
		if err != nil {
			return errorResult(err.Error()), generator.Response{}, nil
		}
		req.Snapshot = snapshot
	}

	return s.analyze(ctx, req)
}

func (s *Server) handleNext(ctx context.Context, _ *gomcp.CallToolRequest, input nextInput) (*gomcp.CallToolResult, generator.Response, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), generator.Response{}, nil
	}
	return s.analyze(ctx, generator.Request{
		Mode:      generator.ModeNext,
		SessionID: input.SessionID,
		BatchSize: s.batch(input.BatchSize),
	})
}

func (s *Server) handleExport(ctx context.Context, _ *gomcp.CallToolRequest, input exportInput) (*gomcp.CallToolResult, exportOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), exportOutput{}, nil
	}

	doc, err := s.svc.Export(ctx, input.SessionID, entities.ParseFormat(input.Format))
	if err != nil {
		return errorResult(fmt.Sprintf("exporting session %s: %s", input.SessionID, err)), exportOutput{}, nil
	}
	return nil, exportOutput{
		Format:      string(doc.Format),
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Body:        doc.Body,
	}, nil
}

func (s *Server) analyze(ctx context.Context, req generator.Request) (*gomcp.CallToolResult, generator.Response, error) {
	resp, err := s.svc.Analyze(ctx, req)
	if err != nil {
		s.logger.WithError(err).Warn("MCP generation failed")
		return errorResult(err.Error()), generator.Response{}, nil
	}
	if resp.TestCases == nil {
		resp.TestCases = []entities.TestCase{}
	}
	return nil, *resp, nil
}

func (s *Server) batch(n int) int {
	if n > 0 {
		return n
	}
	return s.batchSize
}

// toSnapshot re-decodes the loosely typed tool argument
func toSnapshot(v any) (*entities.PageSnapshot, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	var snapshot entities.PageSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snapshot, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
