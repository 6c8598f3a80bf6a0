package mcp

import (
	"context"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// DateInput selects a calendar date.
type DateInput struct {
	Date string `json:"date,omitempty" jsonschema:"calendar date YYYY-MM-DD (default today)"`
}

// MorningInput is the input schema for the morning tool.
type MorningInput struct {
	Date string `json:"date,omitempty" jsonschema:"calendar date YYYY-MM-DD (default today)"`
	Text string `json:"text,omitempty" jsonschema:"morning check-in text"`
}

// EveningInput is the input schema for the evening tool.
type EveningInput struct {
	Date        string `json:"date,omitempty" jsonschema:"calendar date YYYY-MM-DD (default today)"`
	Journal     string `json:"journal" jsonschema:"journal text of the day (required)"`
	Mood        string `json:"mood,omitempty" jsonschema:"mood of the day"`
	EnergyDrain string `json:"energy_drain,omitempty" jsonschema:"what drained energy"`
	Achievement string `json:"achievement,omitempty" jsonschema:"achievement of the day"`
	FollowUp    string `json:"follow_up,omitempty" jsonschema:"what to follow up on"`
	Reflection  string `json:"reflection,omitempty" jsonschema:"reflection"`
}

// ActionInput is the input schema for the action tool.
type ActionInput struct {
	Date     string `json:"date,omitempty" jsonschema:"calendar date YYYY-MM-DD (default today)"`
	ActionID string `json:"action_id,omitempty" jsonschema:"id of the pending action"`
	Decision string `json:"decision" jsonschema:"accept, skip or modify"`
	Text     string `json:"text,omitempty" jsonschema:"replacement text when the decision is modify"`
}

// RecordInput is the input schema for the record tool.
type RecordInput struct {
	Date string `json:"date,omitempty" jsonschema:"calendar date YYYY-MM-DD (default today)"`
	Text string `json:"text" jsonschema:"the note to record"`
}

// FocusInput is the input schema for the focus tool.
type FocusInput struct {
	Date   string `json:"date,omitempty" jsonschema:"any date of the week YYYY-MM-DD (default today)"`
	Name   string `json:"name" jsonschema:"the focus of the week"`
	Intent string `json:"intent,omitempty" jsonschema:"what the focus should achieve"`
	Why    string `json:"why,omitempty" jsonschema:"why it matters"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Source         string `json:"source" jsonschema:"vision, wearable, mobile, checkin or journal"`
	Payload        string `json:"payload" jsonschema:"the raw JSON payload"`
	Date           string `json:"date,omitempty" jsonschema:"date the payload reports on (mobile resolves it from the payload)"`
	DeviceID       string `json:"device_id,omitempty" jsonschema:"device identity of the payload"`
	UpdateDocument bool   `json:"update_document,omitempty" jsonschema:"rewrite the Device Data block of the day"`
}

// FlowOutput is the output schema of the flow tools.
type FlowOutput struct {
	Flow     string            `json:"flow"`
	Date     string            `json:"date"`
	Written  bool              `json:"written"`
	Paths    []string          `json:"paths"`
	Sections map[string]string `json:"sections"`
	Action   *ActionOutput     `json:"action,omitempty"`
}

// ActionOutput is a pending action.
type ActionOutput struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	AlignedWith string `json:"aligned_with,omitempty"`
	Status      string `json:"status"`
}

// RecordOutput is the output schema of the record tool.
type RecordOutput struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// IngestOutput is the output schema of the ingest tool.
type IngestOutput struct {
	Date         string `json:"date"`
	Source       string `json:"source"`
	EntryID      string `json:"entry_id"`
	Corrected    bool   `json:"corrected"`
	DocumentPath string `json:"document_path,omitempty"`
}

// StateOutput is the output schema of the state tool.
type StateOutput struct {
	Date    string             `json:"date"`
	Sources []string           `json:"sources"`
	Metrics map[string]float64 `json:"metrics"`
	Action  *ActionOutput      `json:"action,omitempty"`
}

func addTool[In, Out any](s *Server, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.server, t, h)
	s.tools = append(s.tools, t.Name)
}

// registerTools offers the state tool always and the writing tools unless
// the server is read-only.
func (s *Server) registerTools() {
	addTool(s, &mcp.Tool{
		Name:        "state",
		Description: "Read the merged telemetry and pending action of a day",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}, s.handleState)

	if s.opts.ReadOnly {
		return
	}

	addTool(s, &mcp.Tool{
		Name:        "align",
		Description: "Run the alignment flow: metrics snapshot, value board, pattern and focus",
	}, s.handleAlign)
	addTool(s, &mcp.Tool{
		Name:        "morning",
		Description: "Run the morning flow and propose one micro-action for the day",
	}, s.handleMorning)
	addTool(s, &mcp.Tool{
		Name:        "evening",
		Description: "Run the evening flow from the journal of the day",
	}, s.handleEvening)
	addTool(s, &mcp.Tool{
		Name:        "action",
		Description: "Accept, skip or modify the pending micro-action",
	}, s.handleAction)
	addTool(s, &mcp.Tool{
		Name:        "record",
		Description: "Add a free-form record to the day",
	}, s.handleRecord)
	addTool(s, &mcp.Tool{
		Name:        "focus",
		Description: "Set the focus of the ISO week",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, s.handleFocus)

	if s.ports.Ingest != nil {
		addTool(s, &mcp.Tool{
			Name:        "ingest",
			Description: "Ingest a raw telemetry or text payload",
		}, s.handleIngest)
	}
}

func (s *Server) handleAlign(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DateInput,
) (*mcp.CallToolResult, FlowOutput, error) {
	result, err := s.ports.Flows.Align(ctx, domain.AlignInput{Date: input.Date})
	if err != nil {
		return nil, FlowOutput{}, err
	}
	return nil, toFlowOutput(result), nil
}

func (s *Server) handleMorning(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MorningInput,
) (*mcp.CallToolResult, FlowOutput, error) {
	result, err := s.ports.Flows.Morning(ctx, domain.MorningInput{Date: input.Date, Text: input.Text})
	if err != nil {
		return nil, FlowOutput{}, err
	}
	return nil, toFlowOutput(result), nil
}

func (s *Server) handleEvening(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EveningInput,
) (*mcp.CallToolResult, FlowOutput, error) {
	result, err := s.ports.Flows.Evening(ctx, domain.EveningInput{
		Date:        input.Date,
		Journal:     input.Journal,
		Mood:        input.Mood,
		EnergyDrain: input.EnergyDrain,
		Achievement: input.Achievement,
		FollowUp:    input.FollowUp,
		Reflection:  input.Reflection,
	})
	if err != nil {
		return nil, FlowOutput{}, err
	}
	return nil, toFlowOutput(result), nil
}

func (s *Server) handleAction(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ActionInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	action, err := s.ports.Flows.ResolveAction(ctx, domain.ActionInput{
		Date:     input.Date,
		ActionID: input.ActionID,
		Decision: domain.ActionDecision(strings.ToLower(input.Decision)),
		Text:     input.Text,
	})
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, *toActionOutput(action), nil
}

func (s *Server) handleRecord(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	rec, err := s.ports.Flows.AddRecord(ctx, domain.RecordInput{
		Date:   input.Date,
		Text:   input.Text,
		Source: "mcp",
	})
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{ID: rec.ID, Date: rec.Date, Time: rec.CreatedAt.Format("15:04")}, nil
}

func (s *Server) handleFocus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FocusInput,
) (*mcp.CallToolResult, FlowOutput, error) {
	result, err := s.ports.Flows.SetFocus(ctx, domain.FocusInput{
		Date:  input.Date,
		Focus: domain.Focus{Name: input.Name, Intent: input.Intent, Why: input.Why},
	})
	if err != nil {
		return nil, FlowOutput{}, err
	}
	return nil, toFlowOutput(result), nil
}

func (s *Server) handleState(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DateInput,
) (*mcp.CallToolResult, StateOutput, error) {
	date := input.Date
	if date == "" {
		date = domain.Today()
	}
	st, err := s.ports.State.Get(ctx, date)
	if err != nil {
		return nil, StateOutput{}, err
	}
	return nil, toStateOutput(st), nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	var (
		result *domain.IngestResult
		err    error
	)
	source := domain.SourceKind(input.Source)
	if source == domain.SourceMobile && input.Date == "" {
		result, err = s.ports.Ingest.IngestMobile(ctx, []byte(input.Payload), input.UpdateDocument)
	} else {
		result, err = s.ports.Ingest.Ingest(ctx, domain.IngestRequest{
			Source:         source,
			DeviceID:       input.DeviceID,
			Date:           input.Date,
			Body:           []byte(input.Payload),
			UpdateDocument: input.UpdateDocument,
		})
	}
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		Date:         result.Date,
		Source:       string(result.Source),
		EntryID:      result.EntryID,
		Corrected:    result.Corrected,
		DocumentPath: result.DocumentPath,
	}, nil
}

func toFlowOutput(r *domain.FlowResult) FlowOutput {
	out := FlowOutput{
		Flow:     string(r.Flow),
		Date:     r.Date,
		Written:  r.Written,
		Paths:    r.Paths(),
		Sections: r.Sections(),
	}
	if r.PendingAction != nil {
		out.Action = toActionOutput(r.PendingAction)
	}
	return out
}

func toActionOutput(a *domain.PendingAction) *ActionOutput {
	return &ActionOutput{
		ID:          a.ID,
		Text:        a.Text,
		AlignedWith: a.AlignedWith,
		Status:      string(a.Status),
	}
}

func toStateOutput(st *domain.DailyState) StateOutput {
	out := StateOutput{
		Date:    st.Date,
		Sources: make([]string, 0, len(st.Raw)),
		Metrics: make(map[string]float64),
	}
	for kind := range st.Raw {
		out.Sources = append(out.Sources, string(kind))
	}
	sort.Strings(out.Sources)
	for _, m := range domain.AllMetrics {
		if v, ok := st.Normalized.Value(m); ok {
			out.Metrics[string(m)] = v
		}
	}
	if st.Normalized.SleepEfficiency != nil {
		out.Metrics["sleep_efficiency"] = *st.Normalized.SleepEfficiency
	}
	if st.PendingAction != nil {
		out.Action = toActionOutput(st.PendingAction)
	}
	return out
}
