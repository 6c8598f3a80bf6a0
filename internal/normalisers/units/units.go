package units

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// Round rounds half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// MsToMinutes converts milliseconds to whole minutes.
func MsToMinutes(ms float64) int {
	return Round(ms / 60000)
}

// SecondsToMinutes converts seconds to whole minutes.
func SecondsToMinutes(s float64) int {
	return Round(s / 60)
}

// ParseDuration reads a human duration such as "4h 10m", "250 min",
// "4:10" or "4小时10分" into minutes. ok is false when text has no digits.
func ParseDuration(text string) (minutes int, ok bool) {
	matches := digitsPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		nums = append(nums, n)
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "小时") || strings.Contains(lower, "h"):
		if len(nums) > 1 {
			return nums[0]*60 + nums[1], true
		}
		return nums[0] * 60, true
	case strings.Contains(text, "分") || strings.Contains(lower, "m"):
		return nums[0], true
	case len(nums) == 2:
		return nums[0]*60 + nums[1], true
	default:
		return nums[0], true
	}
}

// SpanMinutes returns the whole minutes between two RFC 3339 timestamps.
// ok is false when end precedes start.
func SpanMinutes(start, end time.Time) (int, bool) {
	d := end.Sub(start)
	if d < 0 {
		return 0, false
	}
	return Round(d.Minutes()), true
}

// Reader decodes loosely typed payload fields. The first failure is kept
// and every later call becomes a no-op, so a normaliser can read all its
// fields and check Err once.
type Reader struct {
	source domain.SourceKind
	err    error
}

// NewReader returns a Reader reporting errors against source.
func NewReader(source domain.SourceKind) *Reader {
	return &Reader{source: source}
}

// Err returns the first decoding failure as a *domain.SchemaError.
func (r *Reader) Err() error {
	return r.err
}

// Fail records a schema failure at path.
func (r *Reader) Fail(path, reason string) {
	if r.err == nil {
		r.err = &domain.SchemaError{Source: r.source, Field: path, Reason: reason}
	}
}

// Int reads a number or numeric string, rounded to an int.
func (r *Reader) Int(path string, raw json.RawMessage) *int {
	v, ok := r.float(path, raw)
	if !ok {
		return nil
	}
	return domain.Int(Round(v))
}

// Float reads a number or numeric string.
func (r *Reader) Float(path string, raw json.RawMessage) *float64 {
	v, ok := r.float(path, raw)
	if !ok {
		return nil
	}
	return domain.Float(v)
}

// Minutes reads a minute count given as a number or as duration text.
func (r *Reader) Minutes(path string, raw json.RawMessage) *int {
	if r.err != nil || isAbsent(raw) {
		return nil
	}
	if s, isString := asString(raw); isString {
		return r.durationText(path, s)
	}
	v, ok := r.float(path, raw)
	if !ok {
		return nil
	}
	return domain.Int(Round(v))
}

// Seconds reads a second count, numeric or as duration text, into minutes.
func (r *Reader) Seconds(path string, raw json.RawMessage) *int {
	if r.err != nil || isAbsent(raw) {
		return nil
	}
	if s, isString := asString(raw); isString {
		trimmed := strings.TrimSpace(s)
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return domain.Int(SecondsToMinutes(n))
		}
		return r.durationText(path, s)
	}
	v, ok := r.float(path, raw)
	if !ok {
		return nil
	}
	return domain.Int(SecondsToMinutes(v))
}

// String reads a string value. Absent or null yields "".
func (r *Reader) String(path string, raw json.RawMessage) string {
	if r.err != nil || isAbsent(raw) {
		return ""
	}
	s, ok := asString(raw)
	if !ok {
		r.Fail(path, "expected string")
		return ""
	}
	return strings.TrimSpace(s)
}

// Timestamp reads an RFC 3339 timestamp. Absent yields the zero time.
func (r *Reader) Timestamp(path, value string) time.Time {
	if r.err != nil || strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		r.Fail(path, fmt.Sprintf("invalid timestamp %q", value))
		return time.Time{}
	}
	return t
}

func (r *Reader) durationText(path, s string) *int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	minutes, ok := ParseDuration(s)
	if !ok {
		r.Fail(path, fmt.Sprintf("unreadable duration %q", s))
		return nil
	}
	return domain.Int(minutes)
}

func (r *Reader) float(path string, raw json.RawMessage) (float64, bool) {
	if r.err != nil || isAbsent(raw) {
		return 0, false
	}
	if s, isString := asString(raw); isString {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			r.Fail(path, fmt.Sprintf("expected number, got %q", s))
			return 0, false
		}
		return v, true
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		r.Fail(path, "expected number")
		return 0, false
	}
	return v, true
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func asString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
