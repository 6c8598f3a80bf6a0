package trends

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

type mockState struct {
	windows []domain.TrendWindow
	err     error
	date    string
}

func (m *mockState) Get(_ context.Context, date string) (*domain.DailyState, error) {
	return domain.NewDailyState(date), nil
}

func (m *mockState) Rebuild(_ context.Context, date string) (*domain.DailyState, error) {
	return domain.NewDailyState(date), nil
}

func (m *mockState) Trends(_ context.Context, date string) ([]domain.TrendWindow, error) {
	m.date = date
	return m.windows, m.err
}

func float(v float64) *float64 { return &v }

func sampleWindows() []domain.TrendWindow {
	return []domain.TrendWindow{
		{
			EndDate: "2026-02-10",
			Days:    7,
			Records: 6,
			Fields: map[domain.Metric]domain.FieldTrend{
				domain.MetricHRV: {
					Metric:    domain.MetricHRV,
					Avg:       41.5,
					Count:     6,
					PrevAvg:   float(38),
					Delta:     float(3.5),
					Direction: domain.DirectionUp,
				},
			},
		},
		{EndDate: "2026-02-10", Days: 30, Records: 0},
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, &mockState{})

	require.NotNil(t, v)
	assert.Equal(t, domain.Today(), v.Date())
	assert.Nil(t, v.Windows())
}

func TestView_Init_LoadsTrends(t *testing.T) {
	state := &mockState{windows: sampleWindows()}
	v := NewView(nil, state)
	v.SetDate("2026-02-10")

	cmd := v.Init()
	require.NotNil(t, cmd)
	loaded, ok := cmd().(messages.TrendsLoaded)

	require.True(t, ok)
	assert.Equal(t, "2026-02-10", state.date)
	assert.Len(t, loaded.Windows, 2)
}

func TestView_Update_TrendsLoaded(t *testing.T) {
	v := NewView(nil, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.TrendsLoaded{Date: "2026-02-10", Windows: sampleWindows()})

	assert.Len(t, v.Windows(), 2)
	output := v.View()
	assert.Contains(t, output, "Trends to 2026-02-10")
	assert.Contains(t, output, "7 days")
	assert.Contains(t, output, "hrv_ms")
	assert.Contains(t, output, "41.5")
	assert.Contains(t, output, "n=6")
	assert.Contains(t, output, "+3.5 up")
	assert.Contains(t, output, "30 days")
	assert.Contains(t, output, "no data")
}

func TestView_Update_TrendsLoaded_IgnoresOtherDate(t *testing.T) {
	v := NewView(nil, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.TrendsLoaded{Date: "2026-02-09", Windows: sampleWindows()})

	assert.Nil(t, v.Windows())
	assert.Contains(t, v.View(), "Loading...")
}

func TestView_Update_TrendsLoaded_Error(t *testing.T) {
	v := NewView(nil, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.TrendsLoaded{Date: "2026-02-10", Err: errors.New("store closed")})

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "store closed")
}

func TestView_View_NoWindows(t *testing.T) {
	v := NewView(nil, &mockState{})
	v.SetDate("2026-02-10")

	v.Update(messages.TrendsLoaded{Date: "2026-02-10"})

	assert.Contains(t, v.View(), "No trend windows configured.")
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil, &mockState{})
	v.SetDate("2026-03-01")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: "2026-02-28"}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: "2026-03-02"}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.DateChanged{Date: domain.Today()}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Refresh(t *testing.T) {
	state := &mockState{}
	v := NewView(nil, state)
	v.SetDate("2026-02-10")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, "2026-02-10", state.date)
}
