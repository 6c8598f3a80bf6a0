package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// DefaultTrendWindows are the window sizes used when none are configured.
var DefaultTrendWindows = []int{7, 30}

// minDelta is the smallest change between windows that counts as
// movement. Smaller deltas classify as flat.
var minDelta = map[domain.Metric]float64{
	domain.MetricSleepMinutes:       15,
	domain.MetricDeepSleepMinutes:   10,
	domain.MetricSleepScore:         3,
	domain.MetricScreenMinutes:      15,
	domain.MetricNightScreenMinutes: 10,
	domain.MetricUnlocks:            5,
	domain.MetricHRV:                2,
	domain.MetricRestingBPM:         2,
	domain.MetricSpO2:               1,
	domain.MetricStress:             5,
}

// Aggregate computes the trend of every metric over current, compared
// with previous. Days that did not report a metric are skipped for it.
// The window end is the last date of current.
func Aggregate(current, previous []domain.DailyState, window int) domain.TrendWindow {
	out := domain.TrendWindow{
		Days:    window,
		Records: len(current),
		Fields:  make(map[domain.Metric]domain.FieldTrend),
	}
	for _, s := range current {
		if s.Date > out.EndDate {
			out.EndDate = s.Date
		}
	}

	for _, m := range domain.AllMetrics {
		avg, count := mean(current, m)
		if count == 0 {
			continue
		}
		ft := domain.FieldTrend{
			Metric:    m,
			Avg:       round2(avg),
			Count:     count,
			Direction: domain.DirectionFlat,
		}
		if prev, n := mean(previous, m); n > 0 {
			delta := round2(avg - prev)
			ft.PrevAvg = domain.Float(round2(prev))
			ft.Delta = &delta
			ft.Direction = classify(m, delta)
		}
		out.Fields[m] = ft
	}
	return out
}

func mean(states []domain.DailyState, m domain.Metric) (float64, int) {
	var sum float64
	var count int
	for _, s := range states {
		if v, ok := s.Normalized.Value(m); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

func classify(m domain.Metric, delta float64) domain.Direction {
	switch {
	case math.Abs(delta) < minDelta[m]:
		return domain.DirectionFlat
	case delta > 0:
		return domain.DirectionUp
	default:
		return domain.DirectionDown
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TrendService loads the states of each configured window and
// aggregates them.
type TrendService struct {
	store   driven.StateStore
	windows []int
}

// NewTrendService creates a trend service. Non-positive window sizes
// are ignored; if none remain the defaults apply.
func NewTrendService(store driven.StateStore, windows []int) *TrendService {
	var valid []int
	for _, w := range windows {
		if w > 0 {
			valid = append(valid, w)
		}
	}
	if len(valid) == 0 {
		valid = DefaultTrendWindows
	}
	return &TrendService{store: store, windows: valid}
}

// Windows returns one trend window per configured size, each ending at
// date and compared with the same number of days before it.
func (s *TrendService) Windows(ctx context.Context, date string) ([]domain.TrendWindow, error) {
	end, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TrendWindow, 0, len(s.windows))
	for _, n := range s.windows {
		from := domain.FormatDate(end.AddDate(0, 0, -(n - 1)))
		prevTo := domain.FormatDate(end.AddDate(0, 0, -n))
		prevFrom := domain.FormatDate(end.AddDate(0, 0, -(2*n - 1)))

		current, err := s.store.ListRange(ctx, from, date)
		if err != nil {
			return nil, fmt.Errorf("list states %s..%s: %w", from, date, err)
		}
		previous, err := s.store.ListRange(ctx, prevFrom, prevTo)
		if err != nil {
			return nil, fmt.Errorf("list states %s..%s: %w", prevFrom, prevTo, err)
		}

		w := Aggregate(current, previous, n)
		w.EndDate = date
		out = append(out, w)
	}
	return out, nil
}
