package services

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/daylog/internal/core/domain"
)

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got+"\n"))
}

func fullNormalized() domain.Normalized {
	n := domain.Normalized{
		Sleep: &domain.Sleep{
			TotalMinutes: domain.Int(412),
			DeepMinutes:  domain.Int(70),
			REMMinutes:   domain.Int(90),
			LightMinutes: domain.Int(222),
			AwakeMinutes: domain.Int(30),
			Score:        domain.Int(78),
		},
		PhoneUsage: &domain.PhoneUsage{
			ScreenMinutes:      domain.Int(250),
			NightScreenMinutes: domain.Int(25),
			Unlocks:            domain.Int(87),
			TopApps:            []domain.AppUsage{{Name: "WeChat", Minutes: 65}, {Name: "Maps", Minutes: 12}},
			NightTopApps:       []domain.AppUsage{{Name: "Reddit", Minutes: 25}},
		},
		HRVMs:       domain.Int(42),
		RestingBPM:  domain.Int(58),
		SpO2Percent: domain.Int(96),
		StressLevel: domain.Int(32),
	}
	n.Derive()
	return n
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0:00", FormatMinutes(0))
	assert.Equal(t, "0:05", FormatMinutes(5))
	assert.Equal(t, "4:10", FormatMinutes(250))
	assert.Equal(t, "-0:30", FormatMinutes(-30))
}

func TestRenderDeviceData(t *testing.T) {
	assertGolden(t, "device_data", RenderDeviceData(fullNormalized()))
}

func TestRenderDeviceData_Partial(t *testing.T) {
	n := domain.Normalized{PhoneUsage: &domain.PhoneUsage{ScreenMinutes: domain.Int(0)}}
	assert.Equal(t, "- Screen Time: 0:00", RenderDeviceData(n))
	assert.Equal(t, "- No device data", RenderDeviceData(domain.Normalized{}))
}

func TestRenderMetrics(t *testing.T) {
	n := domain.Normalized{
		Sleep:      &domain.Sleep{TotalMinutes: domain.Int(412)},
		PhoneUsage: &domain.PhoneUsage{ScreenMinutes: domain.Int(250)},
	}
	trends := []domain.TrendWindow{
		{Days: 7, Fields: map[domain.Metric]domain.FieldTrend{
			domain.MetricSleepMinutes:  {Avg: 430, Direction: domain.DirectionDown},
			domain.MetricScreenMinutes: {Avg: 200, Direction: domain.DirectionUp},
			domain.MetricHRV:           {Avg: 41.5, Direction: domain.DirectionFlat},
		}},
		{Days: 30, Fields: map[domain.Metric]domain.FieldTrend{
			domain.MetricSleepMinutes: {Avg: 415.3, Direction: domain.DirectionFlat},
		}},
	}

	assertGolden(t, "metrics", RenderMetrics(n, trends))
}

func TestRenderMetrics_Nothing(t *testing.T) {
	assert.Equal(t, "No metrics reported yet.", RenderMetrics(domain.Normalized{}, nil))
}

func TestRenderValueBoard(t *testing.T) {
	items := []domain.ValueBoardItem{
		{Value: "Health", Role: "foundation", Trend: "down", Summary: "Sleep fell below 7h on 4 of 7 days."},
		{Value: "Craft", Role: "driver", Trend: "up", Summary: "Two deep-work blocks | shipped ingest."},
	}
	assertGolden(t, "value_board", RenderValueBoard(items))
	assert.Equal(t, "No values on the board yet.", RenderValueBoard(nil))
}

func TestRenderMicroAction(t *testing.T) {
	a := &domain.PendingAction{Text: "10 minute walk after lunch", AlignedWith: "Health", Status: domain.ActionPending}
	assert.Equal(t, "- [ ] 10 minute walk after lunch\n- Aligned with: Health", RenderMicroAction(a))

	a.Status = domain.ActionAccepted
	assert.Equal(t, "- [x] 10 minute walk after lunch\n- Aligned with: Health", RenderMicroAction(a))

	a.Status = domain.ActionSkipped
	a.AlignedWith = ""
	assert.Equal(t, "- [ ] ~~10 minute walk after lunch~~ (skipped)", RenderMicroAction(a))
}

func TestRenderFocus(t *testing.T) {
	got := RenderFocus(domain.Focus{Name: "Ship ingest", Intent: "Finish the mobile path", Why: "Unblocks trends"})
	assert.Equal(t, "**Ship ingest**\n- Intent: Finish the mobile path\n- Why: Unblocks trends", got)
	assert.Equal(t, "**Rest**", RenderFocus(domain.Focus{Name: " Rest "}))
}

func TestRenderList(t *testing.T) {
	assert.Equal(t, "- a\n- b", RenderList([]string{"a", " ", "b "}, "none"))
	assert.Equal(t, "none", RenderList(nil, "none"))
}

func TestRenderTemplate_Tokens(t *testing.T) {
	d := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-15 2026-W07", RenderTemplate("{{date}} {{week}}", d))
}
