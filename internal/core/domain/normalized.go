package domain

import "math"

// Normalized holds the canonical telemetry fields for one date.
// A nil pointer or nil slice means "not reported"; zero is a measured value.
type Normalized struct {
	Sleep       *Sleep      `json:"sleep,omitempty"`
	PhoneUsage  *PhoneUsage `json:"phone_usage,omitempty"`
	HRVMs       *int        `json:"hrv_ms,omitempty"`
	RestingBPM  *int        `json:"resting_bpm,omitempty"`
	SpO2Percent *int        `json:"spo2_percent,omitempty"`
	StressLevel *int        `json:"stress_level,omitempty"`

	// SleepEfficiency is derived from Sleep and recomputed by Derive.
	SleepEfficiency *float64 `json:"sleep_efficiency,omitempty"`
}

// Sleep is the sleep breakdown in minutes plus the device score.
type Sleep struct {
	TotalMinutes *int `json:"total_minutes,omitempty"`
	DeepMinutes  *int `json:"deep_minutes,omitempty"`
	REMMinutes   *int `json:"rem_minutes,omitempty"`
	LightMinutes *int `json:"light_minutes,omitempty"`
	AwakeMinutes *int `json:"awake_minutes,omitempty"`
	Score        *int `json:"score,omitempty"`
}

// PhoneUsage is screen time, unlocks and per-app usage.
type PhoneUsage struct {
	ScreenMinutes      *int       `json:"screen_minutes,omitempty"`
	NightScreenMinutes *int       `json:"night_screen_minutes,omitempty"`
	Unlocks            *int       `json:"unlocks,omitempty"`
	TopApps            []AppUsage `json:"top_apps,omitempty"`
	NightTopApps       []AppUsage `json:"night_top_apps,omitempty"`
}

// AppUsage is the usage of a single app in minutes.
type AppUsage struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// IsEmpty returns true if no field has been reported.
func (n Normalized) IsEmpty() bool {
	return n.Sleep == nil && n.PhoneUsage == nil && n.HRVMs == nil &&
		n.RestingBPM == nil && n.SpO2Percent == nil && n.StressLevel == nil
}

// Derive recomputes derived fields from the reported ones.
func (n *Normalized) Derive() {
	n.SleepEfficiency = nil
	if n.Sleep == nil || n.Sleep.TotalMinutes == nil || n.Sleep.AwakeMinutes == nil {
		return
	}
	total := *n.Sleep.TotalMinutes
	if total <= 0 {
		return
	}
	eff := float64(total-*n.Sleep.AwakeMinutes) / float64(total)
	eff = math.Round(eff*10000) / 10000
	n.SleepEfficiency = &eff
}

// Clone returns a deep copy.
func (n Normalized) Clone() Normalized {
	out := Normalized{
		HRVMs:           cloneInt(n.HRVMs),
		RestingBPM:      cloneInt(n.RestingBPM),
		SpO2Percent:     cloneInt(n.SpO2Percent),
		StressLevel:     cloneInt(n.StressLevel),
		SleepEfficiency: cloneFloat(n.SleepEfficiency),
	}
	if n.Sleep != nil {
		out.Sleep = &Sleep{
			TotalMinutes: cloneInt(n.Sleep.TotalMinutes),
			DeepMinutes:  cloneInt(n.Sleep.DeepMinutes),
			REMMinutes:   cloneInt(n.Sleep.REMMinutes),
			LightMinutes: cloneInt(n.Sleep.LightMinutes),
			AwakeMinutes: cloneInt(n.Sleep.AwakeMinutes),
			Score:        cloneInt(n.Sleep.Score),
		}
	}
	if n.PhoneUsage != nil {
		out.PhoneUsage = &PhoneUsage{
			ScreenMinutes:      cloneInt(n.PhoneUsage.ScreenMinutes),
			NightScreenMinutes: cloneInt(n.PhoneUsage.NightScreenMinutes),
			Unlocks:            cloneInt(n.PhoneUsage.Unlocks),
			TopApps:            cloneApps(n.PhoneUsage.TopApps),
			NightTopApps:       cloneApps(n.PhoneUsage.NightTopApps),
		}
	}
	return out
}

// Value returns the value of a trend metric, if reported.
func (n Normalized) Value(m Metric) (float64, bool) {
	var p *int
	switch m {
	case MetricSleepMinutes:
		if n.Sleep != nil {
			p = n.Sleep.TotalMinutes
		}
	case MetricDeepSleepMinutes:
		if n.Sleep != nil {
			p = n.Sleep.DeepMinutes
		}
	case MetricSleepScore:
		if n.Sleep != nil {
			p = n.Sleep.Score
		}
	case MetricScreenMinutes:
		if n.PhoneUsage != nil {
			p = n.PhoneUsage.ScreenMinutes
		}
	case MetricNightScreenMinutes:
		if n.PhoneUsage != nil {
			p = n.PhoneUsage.NightScreenMinutes
		}
	case MetricUnlocks:
		if n.PhoneUsage != nil {
			p = n.PhoneUsage.Unlocks
		}
	case MetricHRV:
		p = n.HRVMs
	case MetricRestingBPM:
		p = n.RestingBPM
	case MetricSpO2:
		p = n.SpO2Percent
	case MetricStress:
		p = n.StressLevel
	}
	if p == nil {
		return 0, false
	}
	return float64(*p), true
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneApps(apps []AppUsage) []AppUsage {
	if apps == nil {
		return nil
	}
	out := make([]AppUsage, len(apps))
	copy(out, apps)
	return out
}
