package units

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"4h 10m", 250},
		{"4H", 240},
		{"250 min", 250},
		{"4:10", 250},
		{"4小时10分", 250},
		{"35分钟", 35},
		{"95", 95},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDuration(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseDuration("about an hour")
	assert.False(t, ok)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, -3, Round(-2.5))
	assert.Equal(t, 2, Round(2.49))
	assert.Equal(t, 5, MsToMinutes(270000))
	assert.Equal(t, 1, SecondsToMinutes(30))
	assert.Equal(t, 0, SecondsToMinutes(29))
}

func TestSpanMinutes(t *testing.T) {
	start := time.Date(2026, 2, 10, 23, 0, 0, 0, time.UTC)

	got, ok := SpanMinutes(start, start.Add(90*time.Minute+40*time.Second))
	require.True(t, ok)
	assert.Equal(t, 91, got)

	_, ok = SpanMinutes(start, start.Add(-time.Minute))
	assert.False(t, ok)
}

func TestReader_Values(t *testing.T) {
	r := NewReader(domain.SourceVision)

	assert.Equal(t, 42, *r.Int("a", json.RawMessage(`41.6`)))
	assert.Equal(t, 97, *r.Int("b", json.RawMessage(`"97%"`)))
	assert.Nil(t, r.Int("c", nil))
	assert.Nil(t, r.Int("d", json.RawMessage(`null`)))
	assert.Equal(t, 0, *r.Int("e", json.RawMessage(`0`)))
	assert.Equal(t, 250, *r.Minutes("f", json.RawMessage(`"4h 10m"`)))
	assert.Equal(t, 30, *r.Minutes("g", json.RawMessage(`30`)))
	assert.Equal(t, 400, *r.Seconds("h", json.RawMessage(`24000`)))
	assert.Equal(t, 400, *r.Seconds("i", json.RawMessage(`"24000"`)))
	assert.Equal(t, "Maps", r.String("j", json.RawMessage(`" Maps "`)))
	assert.NoError(t, r.Err())
}

func TestReader_FirstErrorWins(t *testing.T) {
	r := NewReader(domain.SourceVision)

	assert.Nil(t, r.Minutes("phone_usage.screen_time.total", json.RawMessage(`"a while"`)))
	assert.Nil(t, r.Int("watch_health.hrv.value_ms", json.RawMessage(`true`)))

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "phone_usage.screen_time.total", schemaErr.Field)
	assert.Equal(t, domain.SourceVision, schemaErr.Source)
}

func TestReader_RejectsNonNumbers(t *testing.T) {
	r := NewReader(domain.SourceWearable)
	assert.Nil(t, r.Int("x", json.RawMessage(`{"v":1}`)))
	assert.Error(t, r.Err())

	r = NewReader(domain.SourceWearable)
	assert.Nil(t, r.Int("x", json.RawMessage(`"n/a"`)))
	assert.Error(t, r.Err())

	r = NewReader(domain.SourceMobile)
	assert.True(t, r.Timestamp("t", "yesterday").IsZero())
	assert.Error(t, r.Err())
}
