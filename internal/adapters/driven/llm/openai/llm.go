// Package openai answers analysis prompts through the OpenAI chat
// completions API and OpenAI-compatible gateways.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Point it at a compatible gateway
	// (Azure, OpenRouter, a local proxy) to use another backend.
	BaseURL string

	// Model defaults to gpt-4o-mini.
	Model string

	// Timeout bounds one HTTP request (default: 120s).
	Timeout time.Duration
}

// LLMService completes prompts with the OpenAI API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
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
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete sends the prompt as a system + user message pair. JSON
// requests use the native json_object response format.
func (s *LLMService) Complete(ctx context.Context, c driven.Completion) (*driven.Reply, error) {
	body := chatRequest{
		Model:       s.model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
	if c.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: c.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: c.Prompt})
	if c.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := s.post(ctx, "/chat/completions", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: reply has no choices")
	}

	choice := resp.Choices[0]
	reply := &driven.Reply{
		Text:             choice.Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Truncated:        choice.FinishReason == "length",
	}
	logger.Debug("openai %s: %d prompt + %d completion tokens (finish: %s)",
		s.model, reply.PromptTokens, reply.CompletionTokens, choice.FinishReason)
	return reply, nil
}

// post sends body as JSON and decodes the reply into out.
func (s *LLMService) post(ctx context.Context, endpoint string, body any, out *chatResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openai: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read reply: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai: decode reply (status %d): %w", resp.StatusCode, err)
	}
	return statusError(resp.StatusCode, out.Error, raw)
}

// statusError maps a failed reply to an error. Rate limits and server
// errors mean the backend is unavailable right now.
func statusError(status int, apiErr *apiError, raw []byte) error {
	if status == http.StatusOK && apiErr == nil {
		return nil
	}
	msg := string(raw)
	if apiErr != nil {
		msg = apiErr.Message
	}
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: openai (status %d): %s", domain.ErrLLMUnavailable, status, msg)
	}
	return fmt.Errorf("openai (status %d): %s", status, msg)
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists the models, which checks the key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openai: ping: %w", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openai: ping returned status %d: %s", resp.StatusCode, raw)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
