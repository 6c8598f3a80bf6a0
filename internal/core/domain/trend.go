package domain

// Metric names a canonical field that trends are computed for.
type Metric string

// Trend metrics.
const (
	MetricSleepMinutes       Metric = "sleep_minutes"
	MetricDeepSleepMinutes   Metric = "deep_sleep_minutes"
	MetricSleepScore         Metric = "sleep_score"
	MetricScreenMinutes      Metric = "screen_minutes"
	MetricNightScreenMinutes Metric = "night_screen_minutes"
	MetricUnlocks            Metric = "unlocks"
	MetricHRV                Metric = "hrv_ms"
	MetricRestingBPM         Metric = "resting_bpm"
	MetricSpO2               Metric = "spo2_percent"
	MetricStress             Metric = "stress_level"
)

// AllMetrics lists trend metrics in display order.
var AllMetrics = []Metric{
	MetricSleepMinutes,
	MetricDeepSleepMinutes,
	MetricSleepScore,
	MetricScreenMinutes,
	MetricNightScreenMinutes,
	MetricUnlocks,
	MetricHRV,
	MetricRestingBPM,
	MetricSpO2,
	MetricStress,
}

// LowerIsBetter reports whether a falling value is an improvement, as
// for screen time or resting heart rate.
func (m Metric) LowerIsBetter() bool {
	switch m {
	case MetricScreenMinutes, MetricNightScreenMinutes, MetricUnlocks, MetricRestingBPM, MetricStress:
		return true
	}
	return false
}

// Direction is the classified movement of a metric between windows.
type Direction string

// Trend directions.
const (
	DirectionUp   Direction = "up"
	DirectionFlat Direction = "flat"
	DirectionDown Direction = "down"
)

// FieldTrend is the rolling statistics of one metric.
type FieldTrend struct {
	Metric Metric `json:"metric"`

	// Avg is the mean over the days in the window that reported the metric.
	Avg float64 `json:"avg"`

	// Count is the number of days that reported the metric.
	Count int `json:"count"`

	// PrevAvg is the mean over the preceding window, nil if none reported.
	PrevAvg *float64 `json:"prev_avg,omitempty"`

	// Delta is Avg - PrevAvg, nil when PrevAvg is nil.
	Delta *float64 `json:"delta,omitempty"`

	Direction Direction `json:"direction"`
}

// TrendWindow is the trend view over the last Days days ending at EndDate.
// It is recomputed on demand and never persisted.
type TrendWindow struct {
	EndDate string                `json:"end_date"`
	Days    int                   `json:"days"`
	Records int                   `json:"records"`
	Fields  map[Metric]FieldTrend `json:"fields"`
}

// Field returns the trend of m if any day in the window reported it.
func (w TrendWindow) Field(m Metric) (FieldTrend, bool) {
	f, ok := w.Fields[m]
	return f, ok
}
