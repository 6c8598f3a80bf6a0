package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// mockFlowService is a mock implementation of driving.FlowService.
type mockFlowService struct {
	result  *domain.FlowResult
	action  *domain.PendingAction
	err     error
	morning domain.MorningInput
	evening domain.EveningInput
	decided domain.ActionInput
	record  domain.RecordInput
	focus   domain.FocusInput
}

func (m *mockFlowService) Align(_ context.Context, in domain.AlignInput) (*domain.FlowResult, error) {
	return m.flowResult(domain.FlowAlignment, in.Date)
}

func (m *mockFlowService) Morning(_ context.Context, in domain.MorningInput) (*domain.FlowResult, error) {
	m.morning = in
	return m.flowResult(domain.FlowMorning, in.Date)
}

func (m *mockFlowService) Evening(_ context.Context, in domain.EveningInput) (*domain.FlowResult, error) {
	m.evening = in
	return m.flowResult(domain.FlowEvening, in.Date)
}

func (m *mockFlowService) ResolveAction(_ context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	m.decided = in
	if m.err != nil {
		return nil, m.err
	}
	if m.action != nil {
		return m.action, nil
	}
	return &domain.PendingAction{ID: in.ActionID, Text: in.Text, Status: in.Decision.Status()}, nil
}

func (m *mockFlowService) AddRecord(_ context.Context, in domain.RecordInput) (*domain.Record, error) {
	m.record = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Record{
		ID:        "rec-1",
		Date:      in.Date,
		Source:    in.Source,
		Text:      in.Text,
		CreatedAt: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
	}, nil
}

func (m *mockFlowService) SetFocus(_ context.Context, in domain.FocusInput) (*domain.FlowResult, error) {
	m.focus = in
	return m.flowResult(domain.FlowFocus, in.Date)
}

func (m *mockFlowService) GetFocus(_ context.Context, _ string) (*domain.WeeklyFocus, error) {
	return &domain.WeeklyFocus{}, m.err
}

func (m *mockFlowService) RetryWrite(_ context.Context, _ *domain.FlowResult) error {
	return m.err
}

func (m *mockFlowService) flowResult(flow domain.FlowKind, date string) (*domain.FlowResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.FlowResult{Flow: flow, Date: date, Written: true}, nil
}

// mockStateService is a mock implementation of driving.StateService.
type mockStateService struct {
	state   *domain.DailyState
	windows []domain.TrendWindow
	err     error
	date    string
}

func (m *mockStateService) Get(_ context.Context, date string) (*domain.DailyState, error) {
	m.date = date
	if m.err != nil {
		return nil, m.err
	}
	if m.state != nil {
		return m.state, nil
	}
	return domain.NewDailyState(date), nil
}

func (m *mockStateService) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	return m.Get(ctx, date)
}

func (m *mockStateService) Trends(_ context.Context, date string) ([]domain.TrendWindow, error) {
	m.date = date
	return m.windows, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	req    domain.IngestRequest
	mobile []byte
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{Date: req.Date, Source: req.Source, EntryID: "e1"}, nil
}

func (m *mockIngestService) IngestMobile(_ context.Context, body []byte, _ bool) (*domain.IngestResult, error) {
	m.mobile = body
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{Date: "2026-02-10", Source: domain.SourceMobile, EntryID: "m1"}, nil
}
