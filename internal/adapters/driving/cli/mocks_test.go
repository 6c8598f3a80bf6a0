package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// MockFlowService implements driving.FlowService for CLI tests.
type MockFlowService struct {
	AlignFunc    func(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error)
	MorningFunc  func(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error)
	EveningFunc  func(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error)
	ActionFunc   func(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error)
	RecordFunc   func(ctx context.Context, in domain.RecordInput) (*domain.Record, error)
	FocusFunc    func(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error)
	GetFocusFunc func(ctx context.Context, date string) (*domain.WeeklyFocus, error)
	RetryFunc    func(ctx context.Context, result *domain.FlowResult) error
}

func (m *MockFlowService) Align(ctx context.Context, in domain.AlignInput) (*domain.FlowResult, error) {
	if m.AlignFunc != nil {
		return m.AlignFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowAlignment, Date: in.Date}, nil
}

func (m *MockFlowService) Morning(ctx context.Context, in domain.MorningInput) (*domain.FlowResult, error) {
	if m.MorningFunc != nil {
		return m.MorningFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowMorning, Date: in.Date}, nil
}

func (m *MockFlowService) Evening(ctx context.Context, in domain.EveningInput) (*domain.FlowResult, error) {
	if m.EveningFunc != nil {
		return m.EveningFunc(ctx, in)
	}
	return &domain.FlowResult{Flow: domain.FlowEvening, Date: in.Date}, nil
}

func (m *MockFlowService) ResolveAction(ctx context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	if m.ActionFunc != nil {
		return m.ActionFunc(ctx, in)
	}
	return &domain.PendingAction{ID: in.ActionID, Text: in.Text, Status: in.Decision.Status()}, nil
}

func (m *MockFlowService) AddRecord(ctx context.Context, in domain.RecordInput) (*domain.Record, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, in)
	}
	return &domain.Record{
		ID:        "rec-1",
		Date:      "2026-02-10",
		Source:    in.Source,
		Text:      in.Text,
		CreatedAt: time.Date(2026, 2, 10, 21, 15, 0, 0, time.UTC),
	}, nil
}

func (m *MockFlowService) GetFocus(ctx context.Context, date string) (*domain.WeeklyFocus, error) {
	if m.GetFocusFunc != nil {
		return m.GetFocusFunc(ctx, date)
	}
	return &domain.WeeklyFocus{Week: "2026-W07", Path: "Diary/Week/2026-W07.md"}, nil
}

func (m *MockFlowService) SetFocus(ctx context.Context, in domain.FocusInput) (*domain.FlowResult, error) {
	if m.FocusFunc != nil {
		return m.FocusFunc(ctx, in)
	}
	return &domain.FlowResult{
		Flow:      domain.FlowFocus,
		Date:      in.Date,
		Documents: []domain.DocumentUpdate{{Path: "Diary/Week/2026-W07.md"}},
	}, nil
}

func (m *MockFlowService) RetryWrite(ctx context.Context, result *domain.FlowResult) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, result)
	}
	return nil
}

// MockIngestService implements driving.IngestService for CLI tests.
type MockIngestService struct {
	IngestFunc       func(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
	IngestMobileFunc func(ctx context.Context, body []byte, updateDocument bool) (*domain.IngestResult, error)
}

func (m *MockIngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, req)
	}
	return &domain.IngestResult{Date: req.Date, Source: req.Source, EntryID: "e1"}, nil
}

func (m *MockIngestService) IngestMobile(
	ctx context.Context, body []byte, updateDocument bool,
) (*domain.IngestResult, error) {
	if m.IngestMobileFunc != nil {
		return m.IngestMobileFunc(ctx, body, updateDocument)
	}
	return &domain.IngestResult{Date: "2026-02-10", Source: domain.SourceMobile, EntryID: "m1"}, nil
}

// MockStateService implements driving.StateService for CLI tests.
type MockStateService struct {
	GetFunc     func(ctx context.Context, date string) (*domain.DailyState, error)
	RebuildFunc func(ctx context.Context, date string) (*domain.DailyState, error)
	TrendsFunc  func(ctx context.Context, date string) ([]domain.TrendWindow, error)
}

func (m *MockStateService) Get(ctx context.Context, date string) (*domain.DailyState, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, date)
	}
	return domain.NewDailyState(date), nil
}

func (m *MockStateService) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx, date)
	}
	return domain.NewDailyState(date), nil
}

func (m *MockStateService) Trends(ctx context.Context, date string) ([]domain.TrendWindow, error) {
	if m.TrendsFunc != nil {
		return m.TrendsFunc(ctx, date)
	}
	return nil, nil
}

// MockSettingsService implements driving.SettingsService for CLI tests.
type MockSettingsService struct {
	Cfg    domain.Config
	Values map[string]any
	SetErr error
	set    map[string]string
}

func (m *MockSettingsService) Config() domain.Config { return m.Cfg }

func (m *MockSettingsService) Get(key string) (any, bool) {
	v, ok := m.Values[key]
	return v, ok
}

func (m *MockSettingsService) Set(key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *MockSettingsService) Unset(key string) error {
	if _, ok := m.Values[key]; !ok {
		return fmt.Errorf("%w: %s is not set", domain.ErrNotFound, key)
	}
	delete(m.Values, key)
	return nil
}

func (m *MockSettingsService) Keys() []string {
	return slices.Sorted(maps.Keys(m.Values))
}

func (m *MockSettingsService) Path() string { return "/home/test/.daylog/config.toml" }

// testServices holds the mocks wired by setupTestServices.
type testServices struct {
	Flows    *MockFlowService
	Ingest   *MockIngestService
	State    *MockStateService
	Settings *MockSettingsService
}

// setupTestServices wires fresh mocks into the command tree and restores
// the tree after the test.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	s := &testServices{
		Flows:    &MockFlowService{},
		Ingest:   &MockIngestService{},
		State:    &MockStateService{},
		Settings: &MockSettingsService{Cfg: domain.Config{UpdateDocumentOnIngest: true}},
	}
	SetServices(Services{
		Flows:      s.Flows,
		Ingest:     s.Ingest,
		State:      s.State,
		Settings:   s.Settings,
		PendingDir: t.TempDir(),
	})
	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return s
}

// resetFlags restores every flag of the tree to its default.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
