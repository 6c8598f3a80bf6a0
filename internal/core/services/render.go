package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Section markers of the machine-owned sections.
const (
	markerMicroAction = "micro-action"
)

var metricLabels = map[domain.Metric]string{
	domain.MetricSleepMinutes:       "Sleep",
	domain.MetricDeepSleepMinutes:   "Deep Sleep",
	domain.MetricSleepScore:         "Sleep Score",
	domain.MetricScreenMinutes:      "Screen Time",
	domain.MetricNightScreenMinutes: "Night Screen",
	domain.MetricUnlocks:            "Unlocks",
	domain.MetricHRV:                "HRV",
	domain.MetricRestingBPM:         "Resting HR",
	domain.MetricSpO2:               "SpO2",
	domain.MetricStress:             "Stress",
}

var directionArrows = map[domain.Direction]string{
	domain.DirectionUp:   "↑",
	domain.DirectionFlat: "→",
	domain.DirectionDown: "↓",
}

// FormatMinutes renders a minute count as H:MM.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

func formatMetric(m domain.Metric, v float64) string {
	switch m {
	case domain.MetricSleepMinutes, domain.MetricDeepSleepMinutes,
		domain.MetricScreenMinutes, domain.MetricNightScreenMinutes:
		return FormatMinutes(roundInt(v))
	case domain.MetricHRV:
		return fmt.Sprintf("%d ms", roundInt(v))
	case domain.MetricRestingBPM:
		return fmt.Sprintf("%d bpm", roundInt(v))
	case domain.MetricSpO2:
		return fmt.Sprintf("%d%%", roundInt(v))
	default:
		return fmt.Sprintf("%d", roundInt(v))
	}
}

func roundInt(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

// RenderDeviceData renders the Device Data block of the Status section.
func RenderDeviceData(n domain.Normalized) string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
	}

	if s := n.Sleep; s != nil && s.TotalMinutes != nil {
		value := FormatMinutes(*s.TotalMinutes)
		var stages []string
		for _, st := range []struct {
			name string
			v    *int
		}{{"deep", s.DeepMinutes}, {"rem", s.REMMinutes}, {"light", s.LightMinutes}, {"awake", s.AwakeMinutes}} {
			if st.v != nil {
				stages = append(stages, st.name+" "+FormatMinutes(*st.v))
			}
		}
		if len(stages) > 0 {
			value += " (" + strings.Join(stages, ", ") + ")"
		}
		if s.Score != nil {
			value += fmt.Sprintf(", score %d", *s.Score)
		}
		add("Sleep", value)
	} else if s != nil && s.Score != nil {
		add("Sleep", fmt.Sprintf("score %d", *s.Score))
	}
	if n.SleepEfficiency != nil {
		add("Sleep Efficiency", fmt.Sprintf("%.1f%%", *n.SleepEfficiency*100))
	}

	if p := n.PhoneUsage; p != nil {
		if p.ScreenMinutes != nil {
			add("Screen Time", FormatMinutes(*p.ScreenMinutes))
		}
		if p.NightScreenMinutes != nil {
			add("Night Screen", FormatMinutes(*p.NightScreenMinutes))
		}
		if p.Unlocks != nil {
			add("Unlocks", fmt.Sprintf("%d", *p.Unlocks))
		}
		if len(p.TopApps) > 0 {
			add("Top Apps", formatApps(p.TopApps))
		}
		if len(p.NightTopApps) > 0 {
			add("Night Apps", formatApps(p.NightTopApps))
		}
	}

	if n.HRVMs != nil {
		add("HRV", formatMetric(domain.MetricHRV, float64(*n.HRVMs)))
	}
	if n.RestingBPM != nil {
		add("Resting HR", formatMetric(domain.MetricRestingBPM, float64(*n.RestingBPM)))
	}
	if n.SpO2Percent != nil {
		add("SpO2", formatMetric(domain.MetricSpO2, float64(*n.SpO2Percent)))
	}
	if n.StressLevel != nil {
		add("Stress", fmt.Sprintf("%d", *n.StressLevel))
	}

	if len(lines) == 0 {
		return "- No device data"
	}
	return strings.Join(lines, "\n")
}

func formatApps(apps []domain.AppUsage) string {
	const maxApps = 5
	parts := make([]string, 0, maxApps)
	for i, a := range apps {
		if i == maxApps {
			break
		}
		parts = append(parts, a.Name+" "+FormatMinutes(a.Minutes))
	}
	return strings.Join(parts, ", ")
}

// RenderMetrics renders today's values next to the trend windows as a
// table. Metrics reported neither today nor in any window are left out.
func RenderMetrics(n domain.Normalized, trends []domain.TrendWindow) string {
	var b strings.Builder
	b.WriteString("| Metric | Today |")
	for _, w := range trends {
		fmt.Fprintf(&b, " %dd |", w.Days)
	}
	b.WriteString("\n|---|---|")
	for range trends {
		b.WriteString("---|")
	}

	rows := 0
	for _, m := range domain.AllMetrics {
		today, ok := n.Value(m)
		cells := make([]string, 0, len(trends))
		reported := ok
		for _, w := range trends {
			f, has := w.Field(m)
			if !has {
				cells = append(cells, "-")
				continue
			}
			reported = true
			cells = append(cells, formatMetric(m, f.Avg)+" "+directionArrows[f.Direction])
		}
		if !reported {
			continue
		}
		value := "-"
		if ok {
			value = formatMetric(m, today)
		}
		fmt.Fprintf(&b, "\n| %s | %s |", metricLabels[m], value)
		for _, c := range cells {
			fmt.Fprintf(&b, " %s |", c)
		}
		rows++
	}
	if rows == 0 {
		return "No metrics reported yet."
	}
	return b.String()
}

// RenderValueBoard renders the value board as a table.
func RenderValueBoard(items []domain.ValueBoardItem) string {
	if len(items) == 0 {
		return "No values on the board yet."
	}
	var b strings.Builder
	b.WriteString("| Value | Role | Trend | Summary |\n|---|---|---|---|")
	for _, it := range items {
		fmt.Fprintf(&b, "\n| %s | %s | %s | %s |",
			tableCell(it.Value), tableCell(it.Role), tableCell(it.Trend), tableCell(it.Summary))
	}
	return b.String()
}

func tableCell(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// RenderFocus renders a focus statement.
func RenderFocus(f domain.Focus) string {
	lines := []string{"**" + strings.TrimSpace(f.Name) + "**"}
	if f.Intent != "" {
		lines = append(lines, "- Intent: "+strings.TrimSpace(f.Intent))
	}
	if f.Why != "" {
		lines = append(lines, "- Why: "+strings.TrimSpace(f.Why))
	}
	return strings.Join(lines, "\n")
}

// ParseFocus reads back a focus body written by RenderFocus. A body a
// human wrote freely yields its first line as the name.
func ParseFocus(body string) (domain.Focus, bool) {
	var f domain.Focus
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "- Intent:"):
			f.Intent = strings.TrimSpace(strings.TrimPrefix(line, "- Intent:"))
		case strings.HasPrefix(line, "- Why:"):
			f.Why = strings.TrimSpace(strings.TrimPrefix(line, "- Why:"))
		case f.Name == "":
			f.Name = strings.TrimSpace(strings.Trim(line, "*"))
		}
	}
	return f, f.Name != ""
}

// RenderMicroAction renders the micro-action with its decision state.
func RenderMicroAction(a *domain.PendingAction) string {
	var first string
	switch a.Status {
	case domain.ActionAccepted:
		first = "- [x] " + a.Text
	case domain.ActionSkipped:
		first = "- [ ] ~~" + a.Text + "~~ (skipped)"
	case domain.ActionModified:
		first = "- [x] " + a.Text + " (modified)"
	default:
		first = "- [ ] " + a.Text
	}
	if a.AlignedWith == "" {
		return first
	}
	return first + "\n- Aligned with: " + a.AlignedWith
}

// RenderList renders items as a bullet list, or empty when there are none.
func RenderList(items []string, empty string) string {
	var lines []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}

// microActionSection returns the section update of the day's micro-action.
func microActionSection(a *domain.PendingAction) domain.SectionUpdate {
	return domain.SectionUpdate{
		Key:  domain.SectionKey{Heading: domain.HeadingMicroAction, Level: 2, Marker: markerMicroAction},
		Mode: domain.SectionReplace,
		Body: RenderMicroAction(a),
	}
}

func journalItems(sub string, items ...string) domain.SectionUpdate {
	return domain.SectionUpdate{
		Key:   domain.SectionKey{Heading: sub, Level: 3, Parent: domain.HeadingJournal, ParentLevel: 2},
		Mode:  domain.SectionAppendItems,
		Items: items,
	}
}

func deviceDataSection(n domain.Normalized) domain.SectionUpdate {
	return domain.SectionUpdate{
		Key:  domain.SectionKey{Heading: domain.HeadingDeviceData, Level: 3, Parent: domain.HeadingStatus, ParentLevel: 2},
		Mode: domain.SectionReplace,
		Body: RenderDeviceData(n),
	}
}
