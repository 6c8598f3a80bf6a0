package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/daylog/internal/core/domain"
)

func newTestApp(t *testing.T) (*App, *MockFlowService, *MockStateService) {
	t.Helper()
	flows := &MockFlowService{}
	state := &MockStateService{}
	app, err := NewApp(NewPorts(flows, state))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app, flows, state
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(&MockFlowService{}, &MockStateService{}))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Equal(t, domain.Today(), app.Date())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Flows: &MockFlowService{}})

	assert.ErrorIs(t, err, ErrMissingStateService)
	assert.Nil(t, app)
}

func TestNewApp_NilPorts(t *testing.T) {
	app, err := NewApp(nil)

	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _, _ := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(NewPorts(&MockFlowService{}, &MockStateService{}))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockFlowService{}, &MockStateService{}))
	require.NoError(t, err)

	_, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "daylog")
}

func TestApp_Update_CtrlC(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Update_QuitMessage(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

// ==================== Navigation Tests ====================

func TestApp_MenuToToday(t *testing.T) {
	app, _, state := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	changed := cmd()
	assert.Equal(t, messages.ViewChanged{View: messages.ViewToday}, changed)

	_, cmd = app.Update(changed)
	assert.Equal(t, messages.ViewToday, app.CurrentView())
	require.NotNil(t, cmd)

	loaded := cmd()
	app.Update(loaded)

	assert.Equal(t, []string{domain.Today()}, state.dates)
	assert.Contains(t, app.View(), "Day "+domain.Today())
}

func TestApp_TodayBackToMenu(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewToday})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_HelpView(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	output := app.View()

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, output, "accept")
	assert.Contains(t, output, "prev day")
	assert.Contains(t, output, "back to menu")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_DateChanged_ReloadsActiveView(t *testing.T) {
	app, _, state := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewTrends})

	_, cmd := app.Update(messages.DateChanged{Date: "2026-02-09"})
	require.NotNil(t, cmd)
	msg := cmd()

	loaded, ok := msg.(messages.TrendsLoaded)
	require.True(t, ok)
	assert.Equal(t, "2026-02-09", loaded.Date)
	assert.Equal(t, "2026-02-09", app.Date())
	assert.Equal(t, "2026-02-09", state.dates[len(state.dates)-1])
}

func TestApp_TodayResolvesAction(t *testing.T) {
	app, flows, state := newTestApp(t)
	st := domain.NewDailyState("2026-02-10")
	st.Version = 1
	st.PendingAction = &domain.PendingAction{ID: "a1", Text: "Stretch", Status: domain.ActionPending}
	state.state = st

	app.Update(messages.DateChanged{Date: "2026-02-10"})
	app.Update(messages.ViewChanged{View: messages.ViewToday})
	app.Update(messages.StateLoaded{Date: "2026-02-10", State: st})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, "a1", flows.decided.ActionID)
	assert.Equal(t, domain.DecisionAccept, flows.decided.Decision)
	assert.NoError(t, app.Err())
	assert.Contains(t, app.View(), "[accepted]")
}

func TestApp_StateLoadError(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewToday})

	app.Update(messages.StateLoaded{Date: domain.Today(), Err: errors.New("disk full")})

	require.Error(t, app.Err())
	assert.Contains(t, app.View(), "disk full")
}

func TestApp_HelpToggle(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Keys")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Nil(t, cmd, "q does not quit from the keys screen")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_DateChanged_MovesMenu(t *testing.T) {
	app, _, _ := newTestApp(t)

	app.Update(messages.DateChanged{Date: "2026-01-31"})

	assert.Equal(t, "2026-01-31", app.Date())
	assert.Contains(t, app.View(), "2026-01-31")
}

func TestApp_Open(t *testing.T) {
	app, _, state := newTestApp(t)

	app.Open(messages.ViewTrends, "2026-02-01")

	assert.Equal(t, messages.ViewTrends, app.CurrentView())
	assert.Equal(t, "2026-02-01", app.Date())
	require.NotNil(t, app.Init())
	assert.Contains(t, app.View(), "Trends to 2026-02-01")
	assert.Empty(t, state.dates, "loading waits for the program to run Init")
}
