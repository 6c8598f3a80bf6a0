package wearable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

const fullExport = `{
	"date": "2026-02-10",
	"data": {
		"sleep": {
			"dailySleepDTO": {
				"calendarDate": "2026-02-10",
				"sleepTimeSeconds": 24720,
				"deepSleepSeconds": 4200,
				"remSleepSeconds": 5400,
				"lightSleepSeconds": 15120,
				"awakeSleepSeconds": 1800,
				"sleepScores": {"overall": {"value": 81}},
				"sleepScore": 12,
				"averageSpO2Value": 95.4,
				"avgSleepStress": 18
			},
			"avgOvernightHrv": 50
		},
		"hrv": {"hrvSummary": {"lastNightAvg": 44}},
		"resting_heart_rate": {"allMetrics": {"metricsMap": {
			"WELLNESS_RESTING_HEART_RATE": [{"value": 61}, {"value": 57.5}]
		}}},
		"daily_summary": {"averageStressLevel": 29}
	}
}`

func TestSourceKind(t *testing.T) {
	assert.Equal(t, domain.SourceWearable, New().SourceKind())
}

func TestNormalise_WrappedExport(t *testing.T) {
	got, err := New().Normalise(context.Background(), []byte(fullExport))
	require.NoError(t, err)

	require.NotNil(t, got.Sleep)
	assert.Equal(t, 412, *got.Sleep.TotalMinutes)
	assert.Equal(t, 70, *got.Sleep.DeepMinutes)
	assert.Equal(t, 90, *got.Sleep.REMMinutes)
	assert.Equal(t, 252, *got.Sleep.LightMinutes)
	assert.Equal(t, 30, *got.Sleep.AwakeMinutes)
	assert.Equal(t, 81, *got.Sleep.Score)

	assert.Equal(t, 44, *got.HRVMs)
	assert.Equal(t, 58, *got.RestingBPM)
	assert.Equal(t, 95, *got.SpO2Percent)
	assert.Equal(t, 29, *got.StressLevel)
	assert.Nil(t, got.PhoneUsage)
}

func TestNormalise_BareExportFallbacks(t *testing.T) {
	body := []byte(`{
		"sleep": {
			"dailySleepDTO": {"sleepTimeSeconds": 3600, "sleepScore": 40, "avgSleepStress": 21},
			"avgOvernightHrv": 38
		},
		"heart_rate": {"restingHeartRate": 55}
	}`)

	got, err := New().Normalise(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, 60, *got.Sleep.TotalMinutes)
	assert.Nil(t, got.Sleep.AwakeMinutes)
	assert.Equal(t, 40, *got.Sleep.Score)
	assert.Equal(t, 38, *got.HRVMs)
	assert.Equal(t, 55, *got.RestingBPM)
	assert.Equal(t, 21, *got.StressLevel)
	assert.Nil(t, got.SpO2Percent)
}

func TestNormalise_EmptyExport(t *testing.T) {
	got, err := New().Normalise(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestNormalise_BadFieldNamesWrappedPath(t *testing.T) {
	body := []byte(`{"data": {"hrv": {"hrvSummary": {"lastNightAvg": "n/a"}}}}`)

	_, err := New().Normalise(context.Background(), body)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "data.hrv.hrvSummary.lastNightAvg", schemaErr.Field)
}

func TestCalendarDate(t *testing.T) {
	assert.Equal(t, "2026-02-10", CalendarDate([]byte(fullExport)))
	assert.Equal(t, "2026-02-11", CalendarDate([]byte(`{"sleep": {"dailySleepDTO": {"calendarDate": "2026-02-11"}}}`)))
	assert.Equal(t, "", CalendarDate([]byte(`{}`)))
}
