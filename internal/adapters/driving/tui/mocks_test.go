package tui

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// MockFlowService is a mock implementation of driving.FlowService.
type MockFlowService struct {
	decided domain.ActionInput
	err     error
}

func (m *MockFlowService) Align(context.Context, domain.AlignInput) (*domain.FlowResult, error) {
	return &domain.FlowResult{Flow: domain.FlowAlignment}, m.err
}

func (m *MockFlowService) Morning(context.Context, domain.MorningInput) (*domain.FlowResult, error) {
	return &domain.FlowResult{Flow: domain.FlowMorning}, m.err
}

func (m *MockFlowService) Evening(context.Context, domain.EveningInput) (*domain.FlowResult, error) {
	return &domain.FlowResult{Flow: domain.FlowEvening}, m.err
}

func (m *MockFlowService) ResolveAction(_ context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	m.decided = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.PendingAction{ID: in.ActionID, Text: in.Text, Status: in.Decision.Status()}, nil
}

func (m *MockFlowService) AddRecord(_ context.Context, in domain.RecordInput) (*domain.Record, error) {
	return &domain.Record{Date: in.Date, Text: in.Text}, m.err
}

func (m *MockFlowService) SetFocus(context.Context, domain.FocusInput) (*domain.FlowResult, error) {
	return &domain.FlowResult{Flow: domain.FlowFocus}, m.err
}

func (m *MockFlowService) GetFocus(context.Context, string) (*domain.WeeklyFocus, error) {
	return &domain.WeeklyFocus{}, m.err
}

func (m *MockFlowService) RetryWrite(context.Context, *domain.FlowResult) error {
	return m.err
}

// MockStateService is a mock implementation of driving.StateService.
type MockStateService struct {
	state   *domain.DailyState
	windows []domain.TrendWindow
	err     error
	dates   []string
}

func (m *MockStateService) Get(_ context.Context, date string) (*domain.DailyState, error) {
	m.dates = append(m.dates, date)
	if m.err != nil {
		return nil, m.err
	}
	if m.state != nil {
		return m.state, nil
	}
	return domain.NewDailyState(date), nil
}

func (m *MockStateService) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	return m.Get(ctx, date)
}

func (m *MockStateService) Trends(_ context.Context, date string) ([]domain.TrendWindow, error) {
	m.dates = append(m.dates, date)
	return m.windows, m.err
}
