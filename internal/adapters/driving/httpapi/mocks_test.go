package httpapi

import (
	"context"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// mockIngest implements driving.IngestService for testing.
type mockIngest struct {
	ingestFunc func(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
	mobileFunc func(ctx context.Context, body []byte, updateDocument bool) (*domain.IngestResult, error)
}

func (m *mockIngest) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, req)
	}
	return &domain.IngestResult{Date: req.Date, Source: req.Source}, nil
}

func (m *mockIngest) IngestMobile(ctx context.Context, body []byte, updateDocument bool) (*domain.IngestResult, error) {
	if m.mobileFunc != nil {
		return m.mobileFunc(ctx, body, updateDocument)
	}
	return &domain.IngestResult{Source: domain.SourceMobile}, nil
}

// mockFlows implements driving.FlowService for testing.
type mockFlows struct {
	alignFunc    func(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error)
	morningFunc  func(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error)
	eveningFunc  func(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error)
	actionFunc   func(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error)
	recordFunc   func(ctx context.Context, in domain.RecordInput) (*domain.Record, error)
	focusFunc    func(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error)
	getFocusFunc func(ctx context.Context, date string) (*domain.WeeklyFocus, error)
	retryFunc    func(ctx context.Context, result *domain.FlowResult) error
}

func (m *mockFlows) Align(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error) {
	if m.alignFunc != nil {
		return m.alignFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowAlignment, Date: in.Date, Written: true}, nil
}

func (m *mockFlows) Morning(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error) {
	if m.morningFunc != nil {
		return m.morningFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowMorning, Date: in.Date, Written: true}, nil
}

func (m *mockFlows) Evening(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error) {
	if m.eveningFunc != nil {
		return m.eveningFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowEvening, Date: in.Date, Written: true}, nil
}

func (m *mockFlows) ResolveAction(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	if m.actionFunc != nil {
		return m.actionFunc(ctx, in)
	}
	return &domain.PendingAction{ID: in.ActionID, Status: in.Decision.Status()}, nil
}

func (m *mockFlows) AddRecord(ctx context.Context, in domain.RecordInput) (*domain.Record, error) {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, in)
	}
	return &domain.Record{ID: "rec-1", Date: in.Date, Source: in.Source, Text: in.Text}, nil
}

func (m *mockFlows) SetFocus(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error) {
	if m.focusFunc != nil {
		return m.focusFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowFocus, Date: in.Date, Written: true}, nil
}

func (m *mockFlows) GetFocus(ctx context.Context, date string) (*domain.WeeklyFocus, error) {
	if m.getFocusFunc != nil {
		return m.getFocusFunc(ctx, date)
	}
	return &domain.WeeklyFocus{Week: "2026-W07"}, nil
}

func (m *mockFlows) RetryWrite(ctx context.Context, result *domain.FlowResult) error {
	if m.retryFunc != nil {
		return m.retryFunc(ctx, result)
	}
	return nil
}

// mockState implements driving.StateService for testing.
type mockState struct {
	getFunc     func(ctx context.Context, date string) (*domain.DailyState, error)
	rebuildFunc func(ctx context.Context, date string) (*domain.DailyState, error)
	trendsFunc  func(ctx context.Context, date string) ([]domain.TrendWindow, error)
}

func (m *mockState) Get(ctx context.Context, date string) (*domain.DailyState, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, date)
	}
	return domain.NewDailyState(date), nil
}

func (m *mockState) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	if m.rebuildFunc != nil {
		return m.rebuildFunc(ctx, date)
	}
	return domain.NewDailyState(date), nil
}

func (m *mockState) Trends(ctx context.Context, date string) ([]domain.TrendWindow, error) {
	if m.trendsFunc != nil {
		return m.trendsFunc(ctx, date)
	}
	return []domain.TrendWindow{{EndDate: date, Days: 7}}, nil
}
