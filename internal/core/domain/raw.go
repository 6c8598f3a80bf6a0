package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IngestRequest is a raw payload arriving at the ingestion boundary,
// tagged with its source kind and the date it reports on.
type IngestRequest struct {
	Source   SourceKind
	DeviceID string

	// Date is the calendar date the payload belongs to. Empty means today.
	Date string

	// Body is the payload as received. It is stored verbatim.
	Body json.RawMessage

	// UpdateDocument rewrites the Device Data block after a successful merge.
	UpdateDocument bool
}

// Validate checks the request shape before normalisation.
func (r *IngestRequest) Validate() error {
	if !r.Source.IsValid() {
		return &SchemaError{Field: "source", Reason: fmt.Sprintf("unknown source kind %q", r.Source)}
	}
	if r.Date != "" {
		if _, err := ParseDate(r.Date); err != nil {
			return &SchemaError{Source: r.Source, Field: "date", Reason: "must be YYYY-MM-DD"}
		}
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return &SchemaError{Source: r.Source, Field: "body", Reason: "payload is empty"}
	}
	if r.Source == SourceMobile && strings.TrimSpace(r.DeviceID) == "" {
		return &SchemaError{Source: r.Source, Field: "deviceId", Reason: "device identity is required"}
	}
	return nil
}

// TextPayload is the body of the free-text source kinds.
type TextPayload struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// MobileUpload is the payload reported by the on-device client.
type MobileUpload struct {
	DeviceID          string           `json:"deviceId"`
	RangeStart        string           `json:"rangeStart"`
	RangeEnd          string           `json:"rangeEnd"`
	GeneratedAt       string           `json:"generatedAt"`
	LocalDate         string           `json:"localDate,omitempty"`
	UsageTotalMs      *int64           `json:"usageTotalMs"`
	UsageByApp        []MobileAppUsage `json:"usageByApp"`
	NightUsageTotalMs *int64           `json:"nightUsageTotalMs,omitempty"`
	NightUsageByApp   []MobileAppUsage `json:"nightUsageByApp,omitempty"`
	UnlockCount       *int             `json:"unlockCount,omitempty"`
	Health            *MobileHealth    `json:"health"`
}

// MobileAppUsage is the per-app usage entry of a mobile upload.
type MobileAppUsage struct {
	PackageName string `json:"packageName"`
	AppName     string `json:"appName,omitempty"`
	TotalTimeMs *int64 `json:"totalTimeMs"`
}

// MobileHealth is the health section of a mobile upload.
type MobileHealth struct {
	HRVRmssd         []MobileHRVSample       `json:"hrvRmssd,omitempty"`
	RestingHeartRate []MobileHeartRateSample `json:"restingHeartRate,omitempty"`
	SleepStages      []MobileSleepSpan       `json:"sleepStages,omitempty"`
	SleepSessions    []MobileSleepSpan       `json:"sleepSessions,omitempty"`
}

// MobileHRVSample is one RMSSD reading.
type MobileHRVSample struct {
	RmssdMs *float64 `json:"rmssdMs"`
}

// MobileHeartRateSample is one resting heart rate reading.
type MobileHeartRateSample struct {
	BPM *float64 `json:"bpm"`
}

// MobileSleepSpan is a sleep stage or session interval.
type MobileSleepSpan struct {
	Stage     string `json:"stage,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ParseMobileUpload decodes and validates a mobile upload body.
func ParseMobileUpload(body []byte) (*MobileUpload, error) {
	var u MobileUpload
	if err := DecodeJSON(SourceMobile, body, &u); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// Validate checks the required fields of a mobile upload.
func (u *MobileUpload) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"deviceId", u.DeviceID},
		{"rangeStart", u.RangeStart},
		{"rangeEnd", u.RangeEnd},
		{"generatedAt", u.GeneratedAt},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &SchemaError{Source: SourceMobile, Field: r.field, Reason: "is required"}
		}
	}
	if u.UsageTotalMs == nil {
		return &SchemaError{Source: SourceMobile, Field: "usageTotalMs", Reason: "is required"}
	}
	if u.UsageByApp == nil {
		return &SchemaError{Source: SourceMobile, Field: "usageByApp", Reason: "is required"}
	}
	if u.Health == nil {
		return &SchemaError{Source: SourceMobile, Field: "health", Reason: "is required"}
	}
	return nil
}

// ResolveDate returns the date the upload reports on: localDate, then
// the date of rangeStart, rangeEnd and generatedAt. Empty if none parse.
func (u *MobileUpload) ResolveDate() string {
	if u.LocalDate != "" {
		if _, err := ParseDate(u.LocalDate); err == nil {
			return strings.TrimSpace(u.LocalDate)
		}
	}
	for _, ts := range []string{u.RangeStart, u.RangeEnd, u.GeneratedAt} {
		if d := DateFromTimestamp(ts); d != "" {
			return d
		}
	}
	return ""
}

// DecodeJSON decodes body into v, reporting shape mismatches as
// SchemaError with the offending field path.
func DecodeJSON(source SourceKind, body []byte, v any) error {
	err := json.Unmarshal(body, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		return &SchemaError{
			Source: source,
			Field:  field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{
			Source: source,
			Field:  "(body)",
			Reason: fmt.Sprintf("invalid JSON at offset %d", syntaxErr.Offset),
		}
	}

	return &SchemaError{Source: source, Field: "(body)", Reason: err.Error()}
}
