package today

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/core/domain"
)

type mockFlows struct {
	in  domain.ActionInput
	err error
}

func (m *mockFlows) Align(context.Context, domain.AlignInput) (*domain.FlowResult, error) {
	return nil, nil
}

func (m *mockFlows) Morning(context.Context, domain.MorningInput) (*domain.FlowResult, error) {
	return nil, nil
}

func (m *mockFlows) Evening(context.Context, domain.EveningInput) (*domain.FlowResult, error) {
	return nil, nil
}

func (m *mockFlows) ResolveAction(_ context.Context, in domain.ActionInput) (*domain.PendingAction, error) {
	m.in = in
	if m.err != nil {
		return nil, m.err
	}
	text := in.Text
	if text == "" {
		text = "Walk 10 minutes"
	}
	return &domain.PendingAction{ID: in.ActionID, Text: text, Status: in.Decision.Status()}, nil
}

func (m *mockFlows) AddRecord(context.Context, domain.RecordInput) (*domain.Record, error) {
	return nil, nil
}

func (m *mockFlows) SetFocus(context.Context, domain.FocusInput) (*domain.FlowResult, error) {
	return nil, nil
}

func (m *mockFlows) GetFocus(context.Context, string) (*domain.WeeklyFocus, error) {
	return nil, nil
}

func (m *mockFlows) RetryWrite(context.Context, *domain.FlowResult) error {
	return nil
}

type mockState struct {
	state *domain.DailyState
	err   error
	date  string
}

func (m *mockState) Get(_ context.Context, date string) (*domain.DailyState, error) {
	m.date = date
	if m.err != nil {
		return nil, m.err
	}
	if m.state != nil {
		return m.state, nil
	}
	return domain.NewDailyState(date), nil
}

func (m *mockState) Rebuild(ctx context.Context, date string) (*domain.DailyState, error) {
	return m.Get(ctx, date)
}

func (m *mockState) Trends(context.Context, string) ([]domain.TrendWindow, error) {
	return nil, nil
}

func savedState(date string) *domain.DailyState {
	st := domain.NewDailyState(date)
	st.Version = 3
	st.Raw[domain.SourceWearable] = domain.RawEntry{
		ID:         "w1",
		Source:     domain.SourceWearable,
		IngestedAt: time.Date(2026, 2, 10, 7, 5, 0, 0, time.Local),
	}
	st.Normalized.HRVMs = domain.Int(42)
	st.PendingAction = &domain.PendingAction{
		ID:          "a1",
		Text:        "Walk 10 minutes",
		AlignedWith: "Health",
		Status:      domain.ActionPending,
	}
	return st
}

func loadedView(t *testing.T, flows *mockFlows, st *domain.DailyState) *View {
	t.Helper()
	v := NewView(nil, flows, &mockState{state: st})
	v.SetDate(st.Date)
	v.Update(messages.StateLoaded{Date: st.Date, State: st})
	return v
}

func press(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, &mockFlows{}, &mockState{})

	require.NotNil(t, v)
	assert.Equal(t, domain.Today(), v.Date())
	assert.Nil(t, v.State())
	assert.False(t, v.Editing())
}

func TestView_Init_LoadsState(t *testing.T) {
	state := &mockState{}
	v := NewView(nil, &mockFlows{}, state)
	v.SetDate("2026-02-10")

	cmd := v.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	loaded, ok := msg.(messages.StateLoaded)
	require.True(t, ok)
	assert.Equal(t, "2026-02-10", loaded.Date)
	assert.Equal(t, "2026-02-10", state.date)
}

func TestView_Update_StateLoaded(t *testing.T) {
	st := savedState("2026-02-10")
	v := loadedView(t, &mockFlows{}, st)

	assert.Equal(t, st, v.State())
	assert.NoError(t, v.Err())
}

func TestView_Update_StateLoaded_IgnoresOtherDate(t *testing.T) {
	v := NewView(nil, &mockFlows{}, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.StateLoaded{Date: "2026-02-09", State: savedState("2026-02-09")})

	assert.Nil(t, v.State())
}

func TestView_Update_StateLoaded_Error(t *testing.T) {
	v := NewView(nil, &mockFlows{}, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.StateLoaded{Date: "2026-02-10", Err: errors.New("database locked")})

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "database locked")
}

// ==================== Action Tests ====================

func TestView_Accept(t *testing.T) {
	flows := &mockFlows{}
	v := loadedView(t, flows, savedState("2026-02-10"))

	_, cmd := v.Update(press("a"))
	require.NotNil(t, cmd)
	msg := cmd()

	assert.Equal(t, domain.ActionInput{Date: "2026-02-10", ActionID: "a1", Decision: domain.DecisionAccept}, flows.in)

	v.Update(msg)
	assert.Equal(t, domain.ActionAccepted, v.State().PendingAction.Status)
	assert.Contains(t, v.View(), "Action accepted")
}

func TestView_Skip(t *testing.T) {
	flows := &mockFlows{}
	v := loadedView(t, flows, savedState("2026-02-10"))

	_, cmd := v.Update(press("s"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, domain.DecisionSkip, flows.in.Decision)
}

func TestView_Modify(t *testing.T) {
	flows := &mockFlows{}
	v := loadedView(t, flows, savedState("2026-02-10"))

	v.Update(press("m"))
	require.True(t, v.Editing())
	assert.Equal(t, "Walk 10 minutes", v.input.Value())
	assert.Contains(t, v.View(), "Modify action:")

	v.input.SetValue("Walk 20 minutes")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()

	assert.False(t, v.Editing())
	assert.Equal(t, domain.DecisionModify, flows.in.Decision)
	assert.Equal(t, "Walk 20 minutes", flows.in.Text)

	v.Update(msg)
	assert.Equal(t, "Walk 20 minutes", v.State().PendingAction.Text)
	assert.Equal(t, domain.ActionModified, v.State().PendingAction.Status)
}

func TestView_Modify_EmptyTextIsIgnored(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))

	v.Update(press("m"))
	v.input.SetValue("   ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.Editing())
}

func TestView_Modify_EscCancels(t *testing.T) {
	flows := &mockFlows{}
	v := loadedView(t, flows, savedState("2026-02-10"))

	v.Update(press("m"))
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
	assert.Empty(t, flows.in.ActionID)
}

func TestView_Editing_KeysGoToInput(t *testing.T) {
	flows := &mockFlows{}
	v := loadedView(t, flows, savedState("2026-02-10"))

	v.Update(press("m"))
	v.input.SetValue("")
	v.Update(press("a"))

	assert.Equal(t, "a", v.input.Value())
	assert.Empty(t, flows.in.ActionID)
}

func TestView_Accept_WithoutAction(t *testing.T) {
	st := savedState("2026-02-10")
	st.PendingAction = nil
	v := loadedView(t, &mockFlows{}, st)

	_, cmd := v.Update(press("a"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), ErrNoPendingAction)
}

func TestView_ActionResolved_Error(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))

	v.Update(messages.ActionResolved{Err: errors.New("conflict")})

	require.Error(t, v.Err())
	assert.Equal(t, domain.ActionPending, v.State().PendingAction.Status)
}

// ==================== Navigation Tests ====================

func TestView_PrevNextDay(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))

	_, cmd := v.Update(press("h"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: "2026-02-09"}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: "2026-02-11"}, cmd())
}

func TestView_JumpToToday(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))

	_, cmd := v.Update(press("t"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: domain.Today()}, cmd())
}

func TestView_SetDate_ClearsState(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))

	v.SetDate("2026-02-11")

	assert.Nil(t, v.State())
	assert.Equal(t, "2026-02-11", v.Date())
}

func TestView_Refresh(t *testing.T) {
	state := &mockState{}
	v := NewView(nil, &mockFlows{}, state)
	v.SetDate("2026-02-10")

	_, cmd := v.Update(press("r"))
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, "2026-02-10", state.date)
}

func TestView_Back(t *testing.T) {
	v := NewView(nil, &mockFlows{}, &mockState{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

// ==================== Render Tests ====================

func TestView_View_Loaded(t *testing.T) {
	v := loadedView(t, &mockFlows{}, savedState("2026-02-10"))
	v.SetDimensions(120, 40)

	output := v.View()

	assert.Contains(t, output, "Day 2026-02-10")
	assert.Contains(t, output, "wearable")
	assert.Contains(t, output, "07:05")
	assert.Contains(t, output, "hrv_ms")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "[pending]")
	assert.Contains(t, output, "Walk 10 minutes")
	assert.Contains(t, output, "aligned with Health")
}

func TestView_View_NewState(t *testing.T) {
	st := domain.NewDailyState("2026-02-10")
	v := loadedView(t, &mockFlows{}, st)

	output := v.View()

	assert.Contains(t, output, "Nothing ingested yet.")
	assert.Contains(t, output, "daylog morning")
}

func TestView_View_Loading(t *testing.T) {
	v := NewView(nil, &mockFlows{}, &mockState{})

	assert.Contains(t, v.View(), "Loading...")
}
