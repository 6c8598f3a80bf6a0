// Package vision normalises the structured result of screenshot analysis:
// phone screen-time pages and smartwatch health pages.
package vision

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/normalisers/units"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles vision-derived payloads.
type Normaliser struct{}

// New creates a new vision normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SourceKind returns the source kind this normaliser handles.
func (n *Normaliser) SourceKind() domain.SourceKind {
	return domain.SourceVision
}

type payload struct {
	PhoneUsage  *phoneUsage  `json:"phone_usage"`
	WatchHealth *watchHealth `json:"watch_health"`
}

type phoneUsage struct {
	ScreenTime *struct {
		TotalMinutes json.RawMessage `json:"total_minutes"`
		Total        json.RawMessage `json:"total"`
	} `json:"screen_time"`
	Unlock *struct {
		Count json.RawMessage `json:"count"`
	} `json:"unlock"`
	AppUsage []appEntry `json:"app_usage"`
}

type appEntry struct {
	App      json.RawMessage `json:"app"`
	Name     json.RawMessage `json:"name"`
	Minutes  json.RawMessage `json:"minutes"`
	Duration json.RawMessage `json:"duration"`
}

type watchHealth struct {
	Sleep *sleep `json:"sleep"`
	HRV   *struct {
		ValueMs json.RawMessage `json:"value_ms"`
	} `json:"hrv"`
	HeartRate *struct {
		RestingBPM json.RawMessage `json:"resting_bpm"`
	} `json:"heart_rate"`
	SpO2 *struct {
		ValuePercent json.RawMessage `json:"value_percent"`
	} `json:"spo2"`
	Recovery *struct {
		StressLevel json.RawMessage `json:"stress_level"`
	} `json:"recovery"`
}

type sleep struct {
	TotalMinutes json.RawMessage  `json:"total_minutes"`
	Total        json.RawMessage  `json:"total"`
	Score        json.RawMessage  `json:"score"`
	Stages       map[string]stage `json:"stages"`
}

type stage struct {
	Minutes  json.RawMessage `json:"minutes"`
	Duration json.RawMessage `json:"duration"`
}

// Normalise converts a vision payload to canonical fields.
func (n *Normaliser) Normalise(_ context.Context, body []byte) (*domain.Normalized, error) {
	var p payload
	if err := domain.DecodeJSON(domain.SourceVision, body, &p); err != nil {
		return nil, err
	}

	r := units.NewReader(domain.SourceVision)
	out := &domain.Normalized{}

	if p.PhoneUsage != nil {
		out.PhoneUsage = readPhoneUsage(r, p.PhoneUsage)
	}
	if w := p.WatchHealth; w != nil {
		if w.Sleep != nil {
			out.Sleep = readSleep(r, w.Sleep)
		}
		if w.HRV != nil {
			out.HRVMs = r.Int("watch_health.hrv.value_ms", w.HRV.ValueMs)
		}
		if w.HeartRate != nil {
			out.RestingBPM = r.Int("watch_health.heart_rate.resting_bpm", w.HeartRate.RestingBPM)
		}
		if w.SpO2 != nil {
			out.SpO2Percent = r.Int("watch_health.spo2.value_percent", w.SpO2.ValuePercent)
		}
		if w.Recovery != nil {
			out.StressLevel = r.Int("watch_health.recovery.stress_level", w.Recovery.StressLevel)
		}
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func readPhoneUsage(r *units.Reader, p *phoneUsage) *domain.PhoneUsage {
	usage := &domain.PhoneUsage{}

	if st := p.ScreenTime; st != nil {
		usage.ScreenMinutes = r.Minutes("phone_usage.screen_time.total_minutes", st.TotalMinutes)
		if usage.ScreenMinutes == nil {
			usage.ScreenMinutes = r.Minutes("phone_usage.screen_time.total", st.Total)
		}
	}
	if p.Unlock != nil {
		usage.Unlocks = r.Int("phone_usage.unlock.count", p.Unlock.Count)
	}

	for i, entry := range p.AppUsage {
		path := fmt.Sprintf("phone_usage.app_usage[%d]", i)
		name := r.String(path+".app", entry.App)
		if name == "" {
			name = r.String(path+".name", entry.Name)
		}
		minutes := r.Minutes(path+".minutes", entry.Minutes)
		if minutes == nil {
			minutes = r.Minutes(path+".duration", entry.Duration)
		}
		if name == "" || minutes == nil {
			continue
		}
		usage.TopApps = append(usage.TopApps, domain.AppUsage{Name: name, Minutes: *minutes})
	}

	if usage.ScreenMinutes == nil && usage.Unlocks == nil && usage.TopApps == nil {
		return nil
	}
	return usage
}

func readSleep(r *units.Reader, s *sleep) *domain.Sleep {
	out := &domain.Sleep{
		TotalMinutes: r.Minutes("watch_health.sleep.total_minutes", s.TotalMinutes),
		Score:        r.Int("watch_health.sleep.score", s.Score),
	}
	if out.TotalMinutes == nil {
		out.TotalMinutes = r.Minutes("watch_health.sleep.total", s.Total)
	}

	stageMinutes := func(key string) *int {
		st, ok := s.Stages[key]
		if !ok {
			return nil
		}
		path := "watch_health.sleep.stages." + key
		if m := r.Minutes(path+".minutes", st.Minutes); m != nil {
			return m
		}
		return r.Minutes(path+".duration", st.Duration)
	}
	out.DeepMinutes = stageMinutes("deep")
	out.REMMinutes = stageMinutes("rem")
	out.LightMinutes = stageMinutes("light")
	out.AwakeMinutes = stageMinutes("awake")

	if *out == (domain.Sleep{}) {
		return nil
	}
	return out
}
