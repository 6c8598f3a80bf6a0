// Package rules provides a deterministic, threshold-based analyzer.
package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.Analyzer = (*Analyzer)(nil)

const (
	adviceLimit = 2
	actionLimit = 3

	fallbackAdvice = "Take a moment to laugh today; give yourself something light."
	fallbackAction = "Write down the three most important things for today"
)

// doneStatuses mark goal graph nodes that no longer need work.
var doneStatuses = map[string]bool{
	"done": true, "completed": true, "finished": true, "dropped": true, "archived": true,
}

// Analyzer derives advice and actions from metric thresholds and the goal graph.
type Analyzer struct {
	t domain.AdviceThresholds
}

// New creates a rules analyzer. Zero thresholds are replaced by the defaults.
func New(t domain.AdviceThresholds) *Analyzer {
	def := domain.DefaultAdviceThresholds()
	if t.SleepLowMinutes == 0 {
		t.SleepLowMinutes = def.SleepLowMinutes
	}
	if t.SleepMediumMinutes == 0 {
		t.SleepMediumMinutes = def.SleepMediumMinutes
	}
	if t.StressHigh == 0 {
		t.StressHigh = def.StressHigh
	}
	if t.ScreenHighMinutes == 0 {
		t.ScreenHighMinutes = def.ScreenHighMinutes
	}
	if t.HRVLowMs == 0 {
		t.HRVLowMs = def.HRVLowMs
	}
	if t.SleepDropMinutes == 0 {
		t.SleepDropMinutes = def.SleepDropMinutes
	}
	if t.ScreenRiseMinutes == 0 {
		t.ScreenRiseMinutes = def.ScreenRiseMinutes
	}
	return &Analyzer{t: t}
}

// Name identifies the analyzer in logs.
func (a *Analyzer) Name() string {
	return "rules"
}

// Align builds the value board from the goal graph and the pattern from the advice.
func (a *Analyzer) Align(_ context.Context, req domain.AnalysisRequest) (*domain.AlignmentResult, error) {
	advice := a.Advice(req)

	res := &domain.AlignmentResult{
		Snapshot: snapshot(req.Normalized),
		Pattern:  strings.Join(advice, " "),
	}

	direction := sleepDirection(req.Trends)
	if req.Goals != nil {
		for _, v := range req.Goals.Values {
			res.ValueBoard = append(res.ValueBoard, domain.ValueBoardItem{
				Value:   v.Name,
				Role:    v.Fields["role"],
				Trend:   direction,
				Summary: linkedGoals(req.Goals, v.Name),
			})
		}
	}

	if len(req.ActiveGoals) > 0 {
		res.Focus = domain.Focus{
			Name:   req.ActiveGoals[0],
			Intent: "Move " + req.ActiveGoals[0] + " forward a little every day",
			Why:    "It is the first active goal",
		}
	}
	return res, nil
}

// Morning proposes the first daily action as the micro-action.
func (a *Analyzer) Morning(_ context.Context, req domain.AnalysisRequest) (*domain.MorningResult, error) {
	actions := dailyActions(req.Goals, 1)
	res := &domain.MorningResult{
		MicroAction: actions[0].text,
		AlignedWith: actions[0].alignedWith,
		Advice:      a.Advice(req),
	}
	return res, nil
}

// Evening summarises the journal and proposes tomorrow's tasks.
func (a *Analyzer) Evening(_ context.Context, req domain.AnalysisRequest) (*domain.EveningResult, error) {
	res := &domain.EveningResult{
		Summary:        firstLine(req.Text),
		LinkedProjects: linkedProjects(req.Goals, req.Text),
		Advice:         a.Advice(req),
	}
	if res.Summary == "" {
		res.Summary = snapshot(req.Normalized)
	}
	for _, act := range dailyActions(req.Goals, actionLimit) {
		res.TomorrowTasks = append(res.TomorrowTasks, act.text)
	}
	if req.IsWeekEnd {
		res.WeeklyReview = weeklyReview(req.Trends)
		res.WeeklyPlan = res.TomorrowTasks
	}
	return res, nil
}

// Advice returns at most two suggestions derived from the day's metrics,
// the trend windows and the free text.
func (a *Analyzer) Advice(req domain.AnalysisRequest) []string {
	var out []string
	add := func(s string) {
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}
	t := a.t
	n := req.Normalized

	if v, ok := n.Value(domain.MetricSleepMinutes); ok {
		switch {
		case v < float64(t.SleepLowMinutes):
			add("Prioritise recovery today: lower the intensity and go to bed early.")
		case v < float64(t.SleepMediumMinutes):
			add("Plan low-intensity work and leave room for breaks.")
		}
	}
	if v, ok := n.Value(domain.MetricStress); ok && v >= float64(t.StressHigh) {
		add("Take five quiet minutes of breathing to bring stress down.")
	}
	if v, ok := n.Value(domain.MetricScreenMinutes); ok && v >= float64(t.ScreenHighMinutes) {
		add("Cut screen time to rest your eyes and attention.")
	}
	if v, ok := n.Value(domain.MetricHRV); ok && v < float64(t.HRVLowMs) {
		add("Favour recovery activities today and avoid intense effort.")
	}

	for _, w := range req.Trends {
		if w.Records == 0 {
			continue
		}
		if f, ok := w.Field(domain.MetricSleepMinutes); ok {
			if f.Avg < float64(t.SleepMediumMinutes) {
				add(fmt.Sprintf("Average sleep over the last %d days is low; focus on recovery.", w.Days))
			}
			if f.Delta != nil && *f.Delta < -float64(t.SleepDropMinutes) {
				add(fmt.Sprintf("Sleep dropped over the last %d days; try going to bed earlier.", w.Days))
			}
		}
		if f, ok := w.Field(domain.MetricScreenMinutes); ok {
			if f.Avg > float64(t.ScreenHighMinutes) {
				add(fmt.Sprintf("Screen time over the last %d days is high; scroll less.", w.Days))
			}
			if f.Delta != nil && *f.Delta > float64(t.ScreenRiseMinutes) {
				add(fmt.Sprintf("Screen time rose over the last %d days; set a limit.", w.Days))
			}
		}
		if f, ok := w.Field(domain.MetricStress); ok && f.Avg >= float64(t.StressHigh) {
			add(fmt.Sprintf("Stress over the last %d days is high; schedule time to unwind.", w.Days))
		}
		if f, ok := w.Field(domain.MetricHRV); ok && f.Avg < float64(t.HRVLowMs) {
			add(fmt.Sprintf("HRV over the last %d days is low; avoid intense effort.", w.Days))
		}
	}

	text := strings.ToLower(req.Text)
	if containsAny(text, "tired", "exhausted", "sleepy", "drained") {
		add("Plan some light recovery: a walk, a stretch or a hot shower.")
	}
	if containsAny(text, "anxious", "stressed", "stress", "nervous", "overwhelmed") {
		add("Give yourself five quiet minutes of breathing.")
	}

	if len(out) == 0 {
		out = append(out, fallbackAdvice)
	}
	if len(out) > adviceLimit {
		out = out[:adviceLimit]
	}
	return out
}

type action struct {
	text        string
	alignedWith string
}

// dailyActions lists open projects by deadline, then goals. It never
// returns an empty list.
func dailyActions(g *domain.GoalGraph, limit int) []action {
	var out []action
	if g != nil {
		projects := make([]domain.GoalNode, 0, len(g.Projects))
		for _, p := range g.Projects {
			if p.Name != "" && !doneStatuses[strings.ToLower(p.Status)] {
				projects = append(projects, p)
			}
		}
		sort.SliceStable(projects, func(i, j int) bool {
			di, dj := deadlineKey(projects[i]), deadlineKey(projects[j])
			if di != dj {
				return di < dj
			}
			return projects[i].Name < projects[j].Name
		})
		for _, p := range projects {
			text := "Move project forward: " + p.Name
			if target := p.Fields["target"]; target != "" {
				text += " (" + target + ")"
			}
			out = append(out, action{text: text, alignedWith: p.Name})
			if len(out) >= limit {
				return out
			}
		}
		for _, goal := range g.Goals {
			if goal.Name == "" || doneStatuses[strings.ToLower(goal.Status)] {
				continue
			}
			out = append(out, action{text: "Move goal forward: " + goal.Name, alignedWith: goal.Name})
			if len(out) >= limit {
				return out
			}
		}
	}
	if len(out) == 0 {
		out = append(out, action{text: fallbackAction})
	}
	return out
}

// deadlineKey sorts projects without a valid deadline last.
func deadlineKey(p domain.GoalNode) string {
	d := strings.TrimSpace(p.Fields["deadline"])
	if _, err := domain.ParseDate(d); err != nil {
		return "9999-12-31"
	}
	return d
}

func snapshot(n domain.Normalized) string {
	var parts []string
	if v, ok := n.Value(domain.MetricSleepMinutes); ok {
		parts = append(parts, "slept "+hm(int(v)))
	}
	if v, ok := n.Value(domain.MetricScreenMinutes); ok {
		parts = append(parts, hm(int(v))+" of screen time")
	}
	if v, ok := n.Value(domain.MetricHRV); ok {
		parts = append(parts, fmt.Sprintf("HRV %d ms", int(v)))
	}
	if v, ok := n.Value(domain.MetricStress); ok {
		parts = append(parts, fmt.Sprintf("stress %d", int(v)))
	}
	if len(parts) == 0 {
		return "No device data yet."
	}
	s := strings.Join(parts, ", ") + "."
	return strings.ToUpper(s[:1]) + s[1:]
}

func hm(minutes int) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// sleepDirection reports the sleep trend of the shortest window.
func sleepDirection(trends []domain.TrendWindow) string {
	best := -1
	for i, w := range trends {
		if _, ok := w.Field(domain.MetricSleepMinutes); ok && (best < 0 || w.Days < trends[best].Days) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	f, _ := trends[best].Field(domain.MetricSleepMinutes)
	return string(f.Direction)
}

// linkedGoals names the goals whose "value" field points at value.
func linkedGoals(g *domain.GoalGraph, value string) string {
	var names []string
	for _, goal := range g.Goals {
		if strings.EqualFold(strings.TrimSpace(goal.Fields["value"]), value) {
			names = append(names, goal.Name)
		}
	}
	return strings.Join(names, ", ")
}

func linkedProjects(g *domain.GoalGraph, text string) []string {
	if g == nil || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var out []string
	for _, p := range g.Projects {
		if p.Name != "" && strings.Contains(lower, strings.ToLower(p.Name)) {
			out = append(out, p.Name)
		}
	}
	return out
}

func weeklyReview(trends []domain.TrendWindow) string {
	var lines []string
	for _, w := range trends {
		if w.Records == 0 {
			continue
		}
		var parts []string
		for _, m := range []domain.Metric{domain.MetricSleepMinutes, domain.MetricScreenMinutes, domain.MetricStress} {
			f, ok := w.Field(m)
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %.0f (%s)", m, f.Avg, f.Direction))
		}
		if len(parts) > 0 {
			lines = append(lines, fmt.Sprintf("Last %d days: %s.", w.Days, strings.Join(parts, ", ")))
		}
	}
	if len(lines) == 0 {
		return "Not enough device data for a weekly review."
	}
	return strings.Join(lines, "\n")
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
