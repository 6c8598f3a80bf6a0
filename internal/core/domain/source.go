package domain

// SourceKind identifies where a raw payload came from.
type SourceKind string

// Known source kinds.
const (
	// SourceVision is phone usage and watch health extracted from screenshots.
	SourceVision SourceKind = "vision"

	// SourceWearable is a wearable health export (Garmin-style JSON).
	SourceWearable SourceKind = "wearable"

	// SourceMobile is the on-device usage/health ingest payload.
	SourceMobile SourceKind = "mobile"

	// SourceCheckin is the free-text morning check-in.
	SourceCheckin SourceKind = "checkin"

	// SourceJournal is the free-text evening journal.
	SourceJournal SourceKind = "journal"
)

// TelemetrySources are the kinds that carry canonical metrics.
var TelemetrySources = []SourceKind{SourceVision, SourceWearable, SourceMobile}

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceVision, SourceWearable, SourceMobile, SourceCheckin, SourceJournal:
		return true
	default:
		return false
	}
}

// IsText returns true for free-text kinds that never produce metrics.
func (k SourceKind) IsText() bool {
	return k == SourceCheckin || k == SourceJournal
}
