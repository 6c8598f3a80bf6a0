// Package ollama answers analysis prompts with a local Ollama model.
package ollama

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

// Default configuration values. Local models are slow on laptops, so the
// timeout is longer than for the hosted backends.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 180 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL defaults to http://localhost:11434.
	BaseURL string

	// Model defaults to llama3.2. It must already be pulled.
	Model string

	// Timeout bounds one HTTP request (default: 180s).
	Timeout time.Duration
}

// LLMService completes prompts with Ollama.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message         chatMessage `json:"message"`
	DoneReason      string      `json:"done_reason"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
	Error           string      `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Complete sends the prompt to /api/chat without streaming. JSON requests
// use Ollama's "json" format, which constrains decoding to valid JSON.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.Reply, error) {
	body := chatRequest{Model: s.model}
	if c.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: c.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: c.Prompt})
	if c.JSON {
		body.Format = "json"
	}
	if c.MaxTokens > 0 || c.Temperature > 0 {
		body.Options = &options{NumPredict: c.MaxTokens, Temperature: c.Temperature}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama: read reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// A missing model is a 404 with {"error": "model ... not found"}.
		msg := strings.TrimSpace(string(raw))
		var failed chatResponse
		if json.Unmarshal(raw, &failed) == nil && failed.Error != "" {
			msg = failed.Error
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: ollama (status %d): %s", domain.ErrLLMUnavailable, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("ollama (status %d): %s", resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("ollama: decode reply: %w", err)
	}

	reply := &driven.Reply{
		Text:             out.Message.Content,
		PromptTokens:     out.PromptEvalCount,
		CompletionTokens: out.EvalCount,
		Truncated:        out.DoneReason == "length",
	}
	logger.Debug("ollama %s: %d prompt + %d eval tokens (done: %s)",
		s.model, reply.PromptTokens, reply.CompletionTokens, out.DoneReason)
	return reply, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists the local models and checks that the configured one is pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: ping: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ollama: ping returned status %d: %s", resp.StatusCode, raw)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("ollama: decode model list: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q is not pulled (run 'ollama pull %s')", s.model, s.model)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
