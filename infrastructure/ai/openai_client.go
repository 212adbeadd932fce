package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModel   = "gpt-4o"
	DefaultBaseURL = "https://api.openai.com/v1"

	// labels listed per element category in the prompt
	maxPromptLabels = 15
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIClient struct {
	apiKey    string
	model     string
	endpoint  string
	client    *http.Client
	logger    *logrus.Logger
	sanitizer *bluemonday.Policy
}

// NewOpenAIClient - creates a chat completions client suggesting extra test cases
func NewOpenAIClient(cfg Config, logger *logrus.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &OpenAIClient{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		client:    &http.Client{},
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// SuggestTestCases - asks the model for cases the templates did not cover
func (c *OpenAIClient) SuggestTestCases(ctx context.Context, snapshot entities.PageSnapshot, existing []entities.TestCase) ([]entities.Suggestion, error) {
	prompt := c.buildPrompt(snapshot, existing)

	response, err := c.callAPI(ctx, prompt)
	if err != nil {
		return nil, err
	}

	suggestions, err := c.parseSuggestions(response)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"url":         snapshot.URL,
		"suggestions": len(suggestions),
	}).Info("AI suggestions received")

	return suggestions, nil
}

func (c *OpenAIClient) buildPrompt(snapshot entities.PageSnapshot, existing []entities.TestCase) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Page URL: %s\n", c.clean(snapshot.URL))
	fmt.Fprintf(&b, "Page Title: %s\n", c.clean(snapshot.Title))
	if snapshot.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncateText(c.clean(snapshot.Description), 300))
	}
	if snapshot.IsMobile() {
		b.WriteString("Platform: mobile app\n")
	}

	c.writeLabels(&b, "Buttons", snapshot.Buttons)
	c.writeLabels(&b, "Links", snapshot.Links)
	c.writeLabels(&b, "Inputs", snapshot.Inputs)
	if len(snapshot.Forms) > 0 {
		fmt.Fprintf(&b, "Forms (%d):\n", len(snapshot.Forms))
		for i, f := range snapshot.Forms {
			if i == maxPromptLabels {
				break
			}
			fmt.Fprintf(&b, "- %s (%d inputs)\n", c.clean(f.Label()), len(f.Inputs))
		}
	}
	if len(snapshot.Screens) > 0 {
		fmt.Fprintf(&b, "Screens (%d):\n", len(snapshot.Screens))
		for i, s := range snapshot.Screens {
			if i == maxPromptLabels {
				break
			}
			fmt.Fprintf(&b, "- %s\n", c.clean(s.Name))
		}
	}

	if len(existing) > 0 {
		b.WriteString("\nAlready covered:\n")
		for _, tc := range existing {
			fmt.Fprintf(&b, "- %s\n", c.clean(tc.Title))
		}
	}

	b.WriteString(`
Suggest up to 5 additional functional test cases for this page that are NOT already covered.
Focus on user flows that combine several elements, validation and negative scenarios.
Write every step action in one of these forms where possible:
  Navigate to <url>
  Click the "<label>" button
  Click link with text "<label>"
  Enter "<value>" into input field with name "<name>"
  Submit button with text "<label>"

Respond with a JSON array only:
[{"title": "...", "description": "...", "priority": "High|Medium|Low", "steps": [{"action": "...", "expected": "..."}]}]`)

	return b.String()
}

func (c *OpenAIClient) writeLabels(b *strings.Builder, heading string, elements []entities.Element) {
	if len(elements) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", heading, len(elements))
	for i, el := range elements {
		if i == maxPromptLabels {
			fmt.Fprintf(b, "- ... and %d more\n", len(elements)-i)
			return
		}
		label := c.clean(el.Label())
		if el.Name != "" && el.Name != label {
			label = fmt.Sprintf("%s (name=%s)", label, c.clean(el.Name))
		}
		fmt.Fprintf(b, "- %s\n", truncateText(label, 80))
	}
}

func (c *OpenAIClient) callAPI(ctx context.Context, prompt string) (string, error) {
	requestBody := chatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "system",
				Content: "You are a senior QA engineer. You write concise, executable functional test cases for web pages and mobile apps. Always respond with valid JSON.",
			},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call AI API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: %s - %s", resp.Status, truncateText(string(body), 200))
	}

	var apiResponse APIResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return apiResponse.Choices[0].Message.Content, nil
}

// parseSuggestions - accepts a bare array or an object wrapping one under
// "testCases", optionally inside a markdown fence
func (c *OpenAIClient) parseSuggestions(response string) ([]entities.Suggestion, error) {
	cleaned := extractJSONFromMarkdown(response)

	var suggestions []entities.Suggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		var wrapped struct {
			TestCases []entities.Suggestion `json:"testCases"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse AI suggestions: %w", err)
		}
		suggestions = wrapped.TestCases
	}

	for i := range suggestions {
		s := &suggestions[i]
		s.Title = c.clean(s.Title)
		s.Description = c.clean(s.Description)
		s.Priority = c.clean(s.Priority)
		for j := range s.Steps {
			s.Steps[j].Action = c.clean(s.Steps[j].Action)
			s.Steps[j].Expected = c.clean(s.Steps[j].Expected)
		}
	}
	return suggestions, nil
}

// clean strips markup from text crossing the model boundary
func (c *OpenAIClient) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(s)))
}

func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		var jsonLines []string
		inCodeBlock := false
		for _, line := range strings.Split(text, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				if inCodeBlock {
					break
				}
				inCodeBlock = true
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}
		if len(jsonLines) > 0 {
			return strings.Join(jsonLines, "\n")
		}
	}

	// outermost array first, then object
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start != -1 && end > start {
			return text[start : end+1]
		}
	}
	return text
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type APIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ensure OpenAIClient implements AI interface
var _ interfaces.AI = (*OpenAIClient)(nil)
