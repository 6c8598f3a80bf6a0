// Package wearable normalises Garmin-style wearable health exports.
// The export may be the bare object or wrapped in a "data" field.
package wearable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/normalisers/units"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser   = (*Normaliser)(nil)
	_ driven.DateResolver = (*Normaliser)(nil)
)

// Normaliser handles wearable exports.
type Normaliser struct{}

// New creates a new wearable normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SourceKind returns the source kind this normaliser handles.
func (n *Normaliser) SourceKind() domain.SourceKind {
	return domain.SourceWearable
}

type envelope struct {
	Date string          `json:"date"`
	Data json.RawMessage `json:"data"`
}

type export struct {
	Sleep *struct {
		DailySleepDTO   *dailySleep     `json:"dailySleepDTO"`
		AvgOvernightHrv json.RawMessage `json:"avgOvernightHrv"`
	} `json:"sleep"`
	HRV *struct {
		HRVSummary *struct {
			LastNightAvg json.RawMessage `json:"lastNightAvg"`
		} `json:"hrvSummary"`
	} `json:"hrv"`
	HeartRate *struct {
		RestingHeartRate json.RawMessage `json:"restingHeartRate"`
	} `json:"heart_rate"`
	RestingHeartRate *struct {
		AllMetrics *struct {
			MetricsMap map[string][]struct {
				Value json.RawMessage `json:"value"`
			} `json:"metricsMap"`
		} `json:"allMetrics"`
	} `json:"resting_heart_rate"`
	DailySummary *struct {
		AverageStressLevel json.RawMessage `json:"averageStressLevel"`
	} `json:"daily_summary"`
}

type dailySleep struct {
	CalendarDate      string          `json:"calendarDate"`
	SleepTimeSeconds  json.RawMessage `json:"sleepTimeSeconds"`
	DeepSleepSeconds  json.RawMessage `json:"deepSleepSeconds"`
	RemSleepSeconds   json.RawMessage `json:"remSleepSeconds"`
	LightSleepSeconds json.RawMessage `json:"lightSleepSeconds"`
	AwakeSleepSeconds json.RawMessage `json:"awakeSleepSeconds"`
	SleepScore        json.RawMessage `json:"sleepScore"`
	SleepScores       *struct {
		Overall *struct {
			Value json.RawMessage `json:"value"`
		} `json:"overall"`
	} `json:"sleepScores"`
	AverageSpO2Value json.RawMessage `json:"averageSpO2Value"`
	AvgSleepStress   json.RawMessage `json:"avgSleepStress"`
}

const restingHeartRateMetric = "WELLNESS_RESTING_HEART_RATE"

// Normalise converts a wearable export to canonical fields.
func (n *Normaliser) Normalise(_ context.Context, body []byte) (*domain.Normalized, error) {
	e, prefix, err := decode(body)
	if err != nil {
		return nil, err
	}

	r := units.NewReader(domain.SourceWearable)
	out := &domain.Normalized{}

	var daily *dailySleep
	if e.Sleep != nil {
		daily = e.Sleep.DailySleepDTO
	}

	if daily != nil {
		p := prefix + "sleep.dailySleepDTO."
		s := &domain.Sleep{
			TotalMinutes: r.Seconds(p+"sleepTimeSeconds", daily.SleepTimeSeconds),
			DeepMinutes:  r.Seconds(p+"deepSleepSeconds", daily.DeepSleepSeconds),
			REMMinutes:   r.Seconds(p+"remSleepSeconds", daily.RemSleepSeconds),
			LightMinutes: r.Seconds(p+"lightSleepSeconds", daily.LightSleepSeconds),
			AwakeMinutes: r.Seconds(p+"awakeSleepSeconds", daily.AwakeSleepSeconds),
		}
		if daily.SleepScores != nil && daily.SleepScores.Overall != nil {
			s.Score = r.Int(p+"sleepScores.overall.value", daily.SleepScores.Overall.Value)
		}
		if s.Score == nil {
			s.Score = r.Int(p+"sleepScore", daily.SleepScore)
		}
		if *s != (domain.Sleep{}) {
			out.Sleep = s
		}
		out.SpO2Percent = r.Int(p+"averageSpO2Value", daily.AverageSpO2Value)
	}

	if e.HRV != nil && e.HRV.HRVSummary != nil {
		out.HRVMs = r.Int(prefix+"hrv.hrvSummary.lastNightAvg", e.HRV.HRVSummary.LastNightAvg)
	}
	if out.HRVMs == nil && e.Sleep != nil {
		out.HRVMs = r.Int(prefix+"sleep.avgOvernightHrv", e.Sleep.AvgOvernightHrv)
	}

	if e.HeartRate != nil {
		out.RestingBPM = r.Int(prefix+"heart_rate.restingHeartRate", e.HeartRate.RestingHeartRate)
	}
	if out.RestingBPM == nil && e.RestingHeartRate != nil && e.RestingHeartRate.AllMetrics != nil {
		entries := e.RestingHeartRate.AllMetrics.MetricsMap[restingHeartRateMetric]
		if len(entries) > 0 {
			out.RestingBPM = r.Int(
				prefix+"resting_heart_rate.allMetrics.metricsMap."+restingHeartRateMetric+".value",
				entries[len(entries)-1].Value,
			)
		}
	}

	if e.DailySummary != nil {
		out.StressLevel = r.Int(prefix+"daily_summary.averageStressLevel", e.DailySummary.AverageStressLevel)
	}
	if out.StressLevel == nil && daily != nil {
		out.StressLevel = r.Int(prefix+"sleep.dailySleepDTO.avgSleepStress", daily.AvgSleepStress)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveDate returns the calendar date of the export.
func (n *Normaliser) ResolveDate(body []byte) string {
	return CalendarDate(body)
}

// CalendarDate returns the date the export reports on: the top-level
// "date" field, else sleep.dailySleepDTO.calendarDate. It returns ""
// when neither is present.
func CalendarDate(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if d := domain.DateFromTimestamp(env.Date); d != "" {
			return d
		}
	}
	e, _, err := decode(body)
	if err != nil || e.Sleep == nil || e.Sleep.DailySleepDTO == nil {
		return ""
	}
	return domain.DateFromTimestamp(e.Sleep.DailySleepDTO.CalendarDate)
}

func decode(body []byte) (*export, string, error) {
	var env envelope
	if err := domain.DecodeJSON(domain.SourceWearable, body, &env); err != nil {
		return nil, "", err
	}

	prefix := ""
	inner := body
	if trimmed := bytes.TrimSpace(env.Data); len(trimmed) > 0 && trimmed[0] == '{' {
		inner = trimmed
		prefix = "data."
	}

	var e export
	if err := domain.DecodeJSON(domain.SourceWearable, inner, &e); err != nil {
		var schemaErr *domain.SchemaError
		if prefix != "" && errors.As(err, &schemaErr) {
			schemaErr.Field = prefix + schemaErr.Field
		}
		return nil, "", err
	}
	return &e, prefix, nil
}
