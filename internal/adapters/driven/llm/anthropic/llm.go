// Package anthropic answers analysis prompts through the Anthropic
// messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"

	// jsonInstruction stands in for a native JSON mode.
	jsonInstruction = "Respond with a single JSON object and nothing else."

	// jsonPrefill starts the assistant turn so the reply continues an object.
	jsonPrefill = "{"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL defaults to https://api.anthropic.com.
	BaseURL string

	// Model defaults to claude-3-5-sonnet-latest.
	Model string

	// Timeout bounds one HTTP request (default: 120s).
	Timeout time.Duration
}

// LLMService completes prompts with the Anthropic API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete sends the prompt as one user turn. The API has no JSON mode,
// so JSON requests extend the system prompt and prefill the assistant
// turn with an opening brace, which is put back in front of the reply.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.Reply, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	body := messagesRequest{
		Model:       s.model,
		System:      c.System,
		Messages:    []message{{Role: "user", Content: c.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: c.Temperature,
	}
	if c.JSON {
		body.System = strings.TrimSpace(c.System + "\n\n" + jsonInstruction)
		body.Messages = append(body.Messages, message{Role: "assistant", Content: jsonPrefill})
	}

	resp, err := s.send(ctx, body)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	if c.JSON {
		text.WriteString(jsonPrefill)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	reply := &driven.Reply{
		Text:             text.String(),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		Truncated:        resp.StopReason == "max_tokens",
	}
	logger.Debug("anthropic %s: %d input + %d output tokens (stop: %s)",
		s.model, reply.PromptTokens, reply.CompletionTokens, resp.StopReason)
	return reply, nil
}

func (s *LLMService) send(ctx context.Context, body messagesRequest) (*messagesResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("anthropic: create request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: read reply: %w", err)
	}
	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("anthropic: decode reply (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		// 529 is the API's "overloaded" status.
		return nil, fmt.Errorf("%w: anthropic (status %d): %s", domain.ErrLLMUnavailable, resp.StatusCode, errorText(&out, raw))
	case out.Error != nil, resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("anthropic (status %d): %s", resp.StatusCode, errorText(&out, raw))
	case len(out.Content) == 0:
		return nil, fmt.Errorf("anthropic: reply has no content")
	}
	return &out, nil
}

func errorText(resp *messagesResponse, raw []byte) string {
	if resp.Error != nil {
		return resp.Error.Type + ": " + resp.Error.Message
	}
	return string(raw)
}

func (s *LLMService) authorize(req *http.Request) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists the models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: anthropic: ping: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("anthropic: ping returned status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
