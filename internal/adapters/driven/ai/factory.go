// Package ai provides factory functions for creating the analysis backend.
package ai

import (
	"context"
	"fmt"
	"time"

	llmanalysis "github.com/custodia-labs/daylog/internal/adapters/driven/analysis/llm"
	"github.com/custodia-labs/daylog/internal/adapters/driven/analysis/rules"
	anthropicllm "github.com/custodia-labs/daylog/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/daylog/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/daylog/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of analysis backend initialisation.
type InitResult struct {
	Analyzer   driven.Analyzer
	LLMService driven.LLMService
	Warnings   []string // Non-fatal issues that caused fallback.
	FellBack   bool     // True if fell back to the rules analyzer.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Deps are the stores the LLM analyzer reads prompts from and archives
// transcripts to.
type Deps struct {
	Prompts driven.PromptStore
	Archive driven.RawArchive
}

// NewAnalyzer builds the analyzer selected by cfg.Analysis.Provider. When
// the LLM analyzer is selected but the model cannot be reached, it falls
// back to the rules analyzer and records a warning.
func NewAnalyzer(ctx context.Context, cfg domain.Config, deps Deps) *InitResult {
	result := &InitResult{}
	rulesAnalyzer := rules.New(cfg.Analysis.Thresholds)

	if cfg.Analysis.Provider != domain.AnalysisLLM {
		result.Analyzer = rulesAnalyzer
		return result
	}

	fallBack := func(err error) *InitResult {
		logger.Warn("LLM analysis unavailable, using rules: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
		result.Analyzer = rulesAnalyzer
		return result
	}

	svc, err := CreateAndValidateLLMService(ctx, cfg.LLM)
	if err != nil {
		return fallBack(err)
	}
	analyzer, err := llmanalysis.New(llmanalysis.Config{
		LLM:               svc,
		Prompts:           deps.Prompts,
		Archive:           deps.Archive,
		RequestsPerMinute: cfg.Analysis.RequestsPerMinute,
	})
	if err != nil {
		svc.Close()
		return fallBack(err)
	}

	result.LLMService = svc
	result.Analyzer = analyzer
	logger.Debug("Using %s analyzer", analyzer.Name())
	return result
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(ctx context.Context, cfg domain.LLMConfig) (driven.LLMService, error) {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'daylog config set llm.api_key <key>' to fix",
			domain.ErrLLMUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, cfg domain.LLMConfig) error {
	svc, err := CreateLLMService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on cfg.
func CreateLLMService(cfg domain.LLMConfig) (driven.LLMService, error) {
	switch cfg.Provider {
	case domain.LLMOllama:
		return createOllamaLLM(cfg), nil

	case domain.LLMOpenAI:
		return createOpenAILLM(cfg)

	case domain.LLMAnthropic:
		return createAnthropicLLM(cfg)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(cfg domain.LLMConfig) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(cfg domain.LLMConfig) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(cfg domain.LLMConfig) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}
