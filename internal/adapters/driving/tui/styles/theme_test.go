package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

func TestEvening_SignalColoursAreDistinct(t *testing.T) {
	p := Evening()

	seen := map[lipgloss.Color]string{}
	for name, c := range map[string]lipgloss.Color{
		"accent": p.Accent, "calm": p.Calm, "good": p.Good, "caution": p.Caution, "bad": p.Bad,
	} {
		assert.NotEmpty(t, c, name)
		if other, dup := seen[c]; dup {
			t.Errorf("%s and %s share %s", name, other, c)
		}
		seen[c] = name
	}
}

func TestNewStyles(t *testing.T) {
	s := DefaultStyles()

	assert.Equal(t, Evening(), s.Palette())
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, LabelWidth, s.Label.GetWidth())
	assert.Contains(t, s.Label.Render("night_screen_minutes"), "night_screen_minutes")
}

func TestStyles_ActionStatus(t *testing.T) {
	s := DefaultStyles()
	p := s.Palette()

	tests := []struct {
		status domain.ActionStatus
		want   lipgloss.Color
	}{
		{domain.ActionPending, p.Caution},
		{domain.ActionAccepted, p.Good},
		{domain.ActionModified, p.Good},
		{domain.ActionSkipped, p.Dim},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, lipgloss.TerminalColor(tt.want), s.ActionStatus(tt.status).GetForeground())
		})
	}
}

func TestStyles_Trend(t *testing.T) {
	s := DefaultStyles()
	p := s.Palette()

	tests := []struct {
		name   string
		metric domain.Metric
		dir    domain.Direction
		want   lipgloss.Color
	}{
		{"more sleep", domain.MetricSleepMinutes, domain.DirectionUp, p.Good},
		{"less sleep", domain.MetricSleepMinutes, domain.DirectionDown, p.Bad},
		{"higher resting bpm", domain.MetricRestingBPM, domain.DirectionUp, p.Bad},
		{"less screen time", domain.MetricScreenMinutes, domain.DirectionDown, p.Good},
		{"flat", domain.MetricHRV, domain.DirectionFlat, p.Dim},
		{"unclassified", domain.MetricStress, "", p.Dim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, lipgloss.TerminalColor(tt.want), s.Trend(tt.metric, tt.dir).GetForeground())
		})
	}
}
