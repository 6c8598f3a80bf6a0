// Package mobile normalises the usage and health upload of the on-device
// client.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/normalisers/units"
)

// Ensure Normaliser implements the interfaces.
var (
	_ driven.Normaliser   = (*Normaliser)(nil)
	_ driven.DateResolver = (*Normaliser)(nil)
)

// Normaliser handles mobile uploads.
type Normaliser struct{}

// New creates a new mobile normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SourceKind returns the source kind this normaliser handles.
func (n *Normaliser) SourceKind() domain.SourceKind {
	return domain.SourceMobile
}

// Normalise converts a mobile upload to canonical fields.
func (n *Normaliser) Normalise(_ context.Context, body []byte) (*domain.Normalized, error) {
	u, err := domain.ParseMobileUpload(body)
	if err != nil {
		return nil, err
	}

	r := units.NewReader(domain.SourceMobile)
	out := &domain.Normalized{
		PhoneUsage: &domain.PhoneUsage{
			ScreenMinutes: domain.Int(units.MsToMinutes(float64(*u.UsageTotalMs))),
			Unlocks:       u.UnlockCount,
			TopApps:       apps(u.UsageByApp),
			NightTopApps:  apps(u.NightUsageByApp),
		},
	}
	if u.NightUsageTotalMs != nil {
		out.PhoneUsage.NightScreenMinutes = domain.Int(units.MsToMinutes(float64(*u.NightUsageTotalMs)))
	}

	h := u.Health
	var hrv, resting []float64
	for _, s := range h.HRVRmssd {
		if s.RmssdMs != nil {
			hrv = append(hrv, *s.RmssdMs)
		}
	}
	for _, s := range h.RestingHeartRate {
		if s.BPM != nil {
			resting = append(resting, *s.BPM)
		}
	}
	if avg, ok := average(hrv); ok {
		out.HRVMs = domain.Int(units.Round(avg))
	}
	if avg, ok := average(resting); ok {
		out.RestingBPM = domain.Int(units.Round(avg))
	}

	out.Sleep = readSleep(r, h)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveDate returns the date of the upload: localDate, else the date
// part of rangeStart, rangeEnd or generatedAt.
func (n *Normaliser) ResolveDate(body []byte) string {
	var u domain.MobileUpload
	if err := json.Unmarshal(body, &u); err != nil {
		return ""
	}
	return u.ResolveDate()
}

func apps(entries []domain.MobileAppUsage) []domain.AppUsage {
	var out []domain.AppUsage
	for _, e := range entries {
		name := strings.TrimSpace(e.AppName)
		if name == "" {
			name = strings.TrimSpace(e.PackageName)
		}
		if name == "" || e.TotalTimeMs == nil {
			continue
		}
		out = append(out, domain.AppUsage{Name: name, Minutes: units.MsToMinutes(float64(*e.TotalTimeMs))})
	}
	return out
}

// readSleep sums stage intervals per stage. Sessions are only used for
// the total when no stage reported any time.
func readSleep(r *units.Reader, h *domain.MobileHealth) *domain.Sleep {
	totals := map[string]int{}
	for i, span := range h.SleepStages {
		key := stageKey(span.Stage)
		if key == "" {
			continue
		}
		minutes, ok := spanMinutes(r, fmt.Sprintf("health.sleepStages[%d]", i), span)
		if ok {
			totals[key] += minutes
		}
	}

	s := &domain.Sleep{
		DeepMinutes:  positive(totals["deep"]),
		REMMinutes:   positive(totals["rem"]),
		LightMinutes: positive(totals["light"]),
		AwakeMinutes: positive(totals["awake"]),
	}

	sum := totals["deep"] + totals["rem"] + totals["light"] + totals["awake"]
	if sum > 0 {
		s.TotalMinutes = domain.Int(sum)
	} else {
		sessions := 0
		for i, span := range h.SleepSessions {
			if minutes, ok := spanMinutes(r, fmt.Sprintf("health.sleepSessions[%d]", i), span); ok {
				sessions += minutes
			}
		}
		s.TotalMinutes = positive(sessions)
	}

	if *s == (domain.Sleep{}) {
		return nil
	}
	return s
}

func spanMinutes(r *units.Reader, path string, span domain.MobileSleepSpan) (int, bool) {
	start := r.Timestamp(path+".startTime", span.StartTime)
	end := r.Timestamp(path+".endTime", span.EndTime)
	if start.IsZero() || end.IsZero() {
		return 0, false
	}
	return units.SpanMinutes(start, end)
}

func stageKey(stage string) string {
	s := strings.ToLower(stage)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "deep"):
		return "deep"
	case strings.Contains(s, "light"):
		return "light"
	case strings.Contains(s, "rem"):
		return "rem"
	case strings.Contains(s, "awake"), strings.Contains(s, "out"):
		return "awake"
	default:
		return ""
	}
}

func positive(v int) *int {
	if v <= 0 {
		return nil
	}
	return domain.Int(v)
}

func average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
