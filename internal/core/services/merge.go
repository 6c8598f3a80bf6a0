package services

import (
	"sort"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

// Merge folds incoming into existing at leaf granularity and returns the
// merged state. Fields present in incoming replace the same fields of
// existing; fields incoming does not report are kept. Neither argument
// is modified.
func Merge(existing, incoming *domain.DailyState) *domain.DailyState {
	out := existing.Clone()
	for kind, entry := range incoming.Raw {
		out.Raw[kind] = entry
	}
	out.Normalized = MergeNormalized(out.Normalized, incoming.Normalized)
	if incoming.PendingAction != nil {
		pa := *incoming.PendingAction
		out.PendingAction = &pa
	}
	out.Audit = append(out.Audit, incoming.Audit...)
	if incoming.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = incoming.UpdatedAt
	}
	return out
}

// MergeNormalized overlays the reported fields of src onto dst.
// App usage lists are replaced whole.
func MergeNormalized(dst, src domain.Normalized) domain.Normalized {
	out := dst.Clone()
	src = src.Clone()

	if src.Sleep != nil {
		if out.Sleep == nil {
			out.Sleep = &domain.Sleep{}
		}
		overlay(&out.Sleep.TotalMinutes, src.Sleep.TotalMinutes)
		overlay(&out.Sleep.DeepMinutes, src.Sleep.DeepMinutes)
		overlay(&out.Sleep.REMMinutes, src.Sleep.REMMinutes)
		overlay(&out.Sleep.LightMinutes, src.Sleep.LightMinutes)
		overlay(&out.Sleep.AwakeMinutes, src.Sleep.AwakeMinutes)
		overlay(&out.Sleep.Score, src.Sleep.Score)
	}

	if src.PhoneUsage != nil {
		if out.PhoneUsage == nil {
			out.PhoneUsage = &domain.PhoneUsage{}
		}
		overlay(&out.PhoneUsage.ScreenMinutes, src.PhoneUsage.ScreenMinutes)
		overlay(&out.PhoneUsage.NightScreenMinutes, src.PhoneUsage.NightScreenMinutes)
		overlay(&out.PhoneUsage.Unlocks, src.PhoneUsage.Unlocks)
		if src.PhoneUsage.TopApps != nil {
			out.PhoneUsage.TopApps = src.PhoneUsage.TopApps
		}
		if src.PhoneUsage.NightTopApps != nil {
			out.PhoneUsage.NightTopApps = src.PhoneUsage.NightTopApps
		}
	}

	overlay(&out.HRVMs, src.HRVMs)
	overlay(&out.RestingBPM, src.RestingBPM)
	overlay(&out.SpO2Percent, src.SpO2Percent)
	overlay(&out.StressLevel, src.StressLevel)

	out.Derive()
	return out
}

func overlay(dst **int, src *int) {
	if src != nil {
		*dst = src
	}
}

// rawInIngestOrder returns the raw entries of a state oldest first.
// Entries ingested at the same instant are ordered by source kind.
func rawInIngestOrder(raw map[domain.SourceKind]domain.RawEntry) []domain.RawEntry {
	entries := make([]domain.RawEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].IngestedAt.Equal(entries[j].IngestedAt) {
			return entries[i].IngestedAt.Before(entries[j].IngestedAt)
		}
		return entries[i].Source < entries[j].Source
	})
	return entries
}
