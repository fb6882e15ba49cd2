package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goaltick/internal/model"
)

func reportGroup(name string) *model.DayGroup {
	return &model.DayGroup{
		ID:   "g-" + name,
		Name: name,
		Tasks: []*model.TaskInstance{
			{ID: "t1", Description: "Drink Water", Measure: "glasses", Expected: 2, Actual: 2, Score: 1, Freq: model.FreqDaily},
			{ID: "t2", Description: "Floss", Measure: "times", Expected: 1, Actual: 0, Score: 2, Freq: model.FreqWeekly},
		},
	}
}

func TestScore_FullCreditOnReachedTarget(t *testing.T) {
	earned, possible := Score(reportGroup("2026-09-01"))
	assert.Equal(t, 1, earned)
	assert.Equal(t, 3, possible)
}

func TestDailySummary(t *testing.T) {
	out := DailySummary(reportGroup("2026-09-01"))

	assert.Contains(t, out, "Goals for 2026-09-01")
	assert.Contains(t, out, "[x] Drink Water: 2/2 glasses")
	assert.Contains(t, out, "[ ] Floss: 0/1 times")
	assert.Contains(t, out, "Score: 1/3")
}

func TestDailySummary_EmptyGroup(t *testing.T) {
	out := DailySummary(&model.DayGroup{Name: "2026-09-01"})
	assert.Contains(t, out, "no goals scheduled")
}

func TestWeeklySummary_TotalsAcrossDays(t *testing.T) {
	groups := []*model.DayGroup{reportGroup("2026-08-31"), reportGroup("2026-09-01")}
	out := WeeklySummary(groups)

	assert.Contains(t, out, "2026-08-31 - 1/2 goals, score 1/3")
	assert.Contains(t, out, "2026-09-01 - 1/2 goals, score 1/3")
	assert.Contains(t, out, "Total score: 2/6")
}

func TestFuturePreview_SkipsEmptyGroups(t *testing.T) {
	groups := []*model.DayGroup{
		reportGroup("2026-09-02"),
		{Name: "2026-09-03"},
	}
	out := FuturePreview(groups)

	assert.Contains(t, out, "2026-09-02")
	assert.NotContains(t, out, "2026-09-03")
	assert.Contains(t, out, "- Drink Water (2 glasses)")
}

func TestBuildICS(t *testing.T) {
	out, err := BuildICS([]*model.DayGroup{reportGroup("2026-09-02")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "UID:t1@goaltick")
	assert.Contains(t, out, "SUMMARY:Drink Water")
	assert.Contains(t, out, "SUMMARY:Floss")
}

func TestBuildICS_RejectsNonDateGroupNames(t *testing.T) {
	_, err := BuildICS([]*model.DayGroup{{Name: "not-a-date"}})
	require.Error(t, err)
}
