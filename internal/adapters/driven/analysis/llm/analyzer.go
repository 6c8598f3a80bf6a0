// Package llm provides an analyzer backed by a language model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

const (
	// DefaultRequestsPerMinute applies when the configured rate is not positive.
	DefaultRequestsPerMinute = 20

	// maxReplyTokens leaves room for the evening result, the largest one.
	maxReplyTokens = 1200

	temperature = 0.4
)

// Analyzer renders a prompt per flow, asks the model for a JSON object
// and decodes it into the flow result.
type Analyzer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	archive driven.RawArchive
	limiter *rate.Limiter
	now     func() time.Time
}

// Config holds the analyzer dependencies. Archive is optional.
type Config struct {
	LLM               driven.LLMService
	Prompts           driven.PromptStore
	Archive           driven.RawArchive
	RequestsPerMinute int
}

// transcript is the archived record of one model call.
type transcript struct {
	Flow     domain.FlowKind `json:"flow"`
	Date     string          `json:"date"`
	Model    string          `json:"model"`
	At       time.Time       `json:"at"`
	Duration string          `json:"duration"`
	System   string          `json:"system"`
	Prompt   string          `json:"prompt"`
	Response string          `json:"response,omitempty"`

	PromptTokens     int  `json:"prompt_tokens,omitempty"`
	CompletionTokens int  `json:"completion_tokens,omitempty"`
	Truncated        bool `json:"truncated,omitempty"`

	Error string `json:"error,omitempty"`
}

// New creates an LLM analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.LLM == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if cfg.Prompts == nil {
		return nil, fmt.Errorf("llm analyzer: prompt store is required")
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return &Analyzer{
		llm:     cfg.LLM,
		prompts: cfg.Prompts,
		archive: cfg.Archive,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		now:     time.Now,
	}, nil
}

// Name identifies the analyzer in logs.
func (a *Analyzer) Name() string {
	return "llm:" + a.llm.ModelName()
}

// Align asks the model for the value board, pattern and focus.
func (a *Analyzer) Align(ctx context.Context, req domain.AnalysisRequest) (*domain.AlignmentResult, error) {
	var res domain.AlignmentResult
	if err := a.run(ctx, driven.PromptAlignment, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Morning asks the model for the micro-action of the day.
func (a *Analyzer) Morning(ctx context.Context, req domain.AnalysisRequest) (*domain.MorningResult, error) {
	var res domain.MorningResult
	if err := a.run(ctx, driven.PromptMorning, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Evening asks the model for the summary, advice and tomorrow's tasks.
func (a *Analyzer) Evening(ctx context.Context, req domain.AnalysisRequest) (*domain.EveningResult, error) {
	var res domain.EveningResult
	if err := a.run(ctx, driven.PromptEvening, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *Analyzer) run(ctx context.Context, promptName string, req domain.AnalysisRequest, out any) error {
	// 1. Render prompts
	tmpl, err := a.prompts.Load(promptName)
	if err != nil {
		return fmt.Errorf("load %s prompt: %w", promptName, err)
	}
	system, err := a.prompts.Load(driven.PromptSystem)
	if err != nil {
		return fmt.Errorf("load system prompt: %w", err)
	}
	vars, err := promptVars(req)
	if err != nil {
		return err
	}
	prompt := Render(tmpl, vars)

	// 2. Wait for a slot
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	// 3. Call the model
	start := a.now()
	reply, callErr := a.llm.Complete(ctx, driven.Completion{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   maxReplyTokens,
		Temperature: temperature,
		JSON:        true,
	})

	t := transcript{
		Flow:     req.Flow,
		Date:     req.Date,
		Model:    a.llm.ModelName(),
		At:       start,
		Duration: a.now().Sub(start).Round(time.Millisecond).String(),
		System:   system,
		Prompt:   prompt,
	}
	if reply != nil {
		t.Response = reply.Text
		t.PromptTokens = reply.PromptTokens
		t.CompletionTokens = reply.CompletionTokens
		t.Truncated = reply.Truncated
	}

	// 4. Decode
	if callErr == nil {
		callErr = DecodeJSON(reply.Text, out)
		if callErr != nil && reply.Truncated {
			callErr = fmt.Errorf("reply cut off at %d tokens: %w", reply.CompletionTokens, callErr)
		}
	}
	if callErr != nil {
		t.Error = callErr.Error()
	}
	a.saveTranscript(ctx, t)
	return callErr
}

// saveTranscript archives the call. Failures are logged, not returned.
func (a *Analyzer) saveTranscript(ctx context.Context, t transcript) {
	if a.archive == nil {
		return
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		logger.Warn("Failed to encode analysis transcript: %v", err)
		return
	}
	key := fmt.Sprintf("analysis/%s/%s-%s.json", t.Flow, t.Date, t.At.UTC().Format("20060102T150405.000000000"))
	// The flow context may already be past its deadline.
	ctx = context.WithoutCancel(ctx)
	if err := a.archive.Put(ctx, key, data); err != nil {
		logger.Warn("Failed to archive analysis transcript %s: %v", key, err)
	}
}

// promptVars builds the placeholder values for a request.
func promptVars(req domain.AnalysisRequest) (map[string]string, error) {
	metrics, err := json.Marshal(req.Normalized)
	if err != nil {
		return nil, fmt.Errorf("encode metrics: %w", err)
	}
	trends, err := json.Marshal(req.Trends)
	if err != nil {
		return nil, fmt.Errorf("encode trends: %w", err)
	}
	goals := []byte("{}")
	if req.Goals != nil {
		if goals, err = json.Marshal(req.Goals); err != nil {
			return nil, fmt.Errorf("encode goals: %w", err)
		}
	}
	return map[string]string{
		"date":         req.Date,
		"metrics":      string(metrics),
		"trends":       string(trends),
		"goals":        string(goals),
		"active_goals": strings.Join(req.ActiveGoals, ", "),
		"records":      strings.Join(req.Records, "\n"),
		"text":         req.Text,
		"week_end":     fmt.Sprintf("%t", req.IsWeekEnd),
	}, nil
}

// Render replaces {{name}} placeholders with vars. Unknown placeholders
// are left as they are.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// errNoJSON is returned when a response holds no JSON object.
var errNoJSON = errors.New("response holds no JSON object")

// DecodeJSON decodes the first JSON object in s into out. Markdown code
// fences and text around the object are ignored.
func DecodeJSON(s string, out any) error {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return errNoJSON
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}
