package status

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/daylog/internal/adapters/driving/tui/keymap"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil)

	assert.NotNil(t, bar.styles)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Empty(t, bar.Date())
	assert.Equal(t, 80, bar.Width())
	assert.Contains(t, bar.View(), "Ready")
}

func TestBar_Status(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		date    string
		want    string
		notWant string
	}{
		{"idle shows the date", StateReady, "", "2026-02-10", "2026-02-10", "Ready"},
		{"message replaces the date", StateReady, "Action accepted", "2026-02-10", "Action accepted", "2026-02-10"},
		{"loading", StateLoading, "", "2026-02-10", "Loading...", "2026-02-10"},
		{"saving", StateSaving, "", "", "Saving...", "Ready"},
		{"bare error", StateError, "", "", "Error", "Ready"},
		{"error with cause", StateError, "no pending action", "", "Error: no pending action", "Ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetDate(tt.date)

			view := bar.View()
			assert.Contains(t, view, tt.want)
			assert.NotContains(t, view, tt.notWant)
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetDate("2026-02-10")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, "2026-02-10", bar.Date())
}

func TestBar_Hints(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km.Hints(keymap.ScreenToday)...)
	bar.SetWidth(200)

	view := bar.View()
	assert.Contains(t, view, "accept")
	assert.Contains(t, view, "modify")
	assert.NotContains(t, view, "quit")

	bar.SetHints(km.Hints(keymap.ScreenMenu)...)
	assert.Contains(t, bar.View(), "quit")

	bar.SetHints()
	assert.NotContains(t, bar.View(), "quit")
}

func TestBar_NarrowKeepsStatus(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(nil, km.Hints(keymap.ScreenToday)...)
	bar.SetState(StateError)
	bar.SetMessage("no pending action")
	bar.SetWidth(30)

	view := bar.View()
	assert.Contains(t, view, "no pending action")
	assert.NotContains(t, view, "modify")
}

func TestBar_FillsWidth(t *testing.T) {
	bar := NewBar(nil, keymap.DefaultKeyMap().Hints(keymap.ScreenTrends)...)
	bar.SetWidth(100)

	assert.Equal(t, 100, lipgloss.Width(bar.View()))
}
