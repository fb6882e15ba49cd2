package goals

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goaltick/internal/model"
)

const sampleGoalsFile = `
# personal goals
daily    | Drink Water | glasses | 2 | 1
weekly   | Floss       | times   | 1 | 2 | mon,wed,fri
duweekly | Run         | times   | 1 | 3 | tue,thu
monthly  | Pay Rent    | times   | 1 | 5 | 1
rrule    | Stretch     | times   | 1 | 1 | FREQ=WEEKLY;BYDAY=MO,WE
`

func TestParse_SplitsByFrequency(t *testing.T) {
	set, err := Parse("goals.txt", []byte(sampleGoalsFile))
	require.NoError(t, err)

	require.Len(t, set.Daily, 1)
	require.Len(t, set.Weekly, 3)
	require.Len(t, set.Monthly, 1)

	water := set.Daily[0]
	require.Equal(t, "Drink Water", water.Description)
	require.Equal(t, model.Measure("glasses"), water.Measure)
	require.Equal(t, 2, water.Expected)
	require.Equal(t, 1, water.Score)

	floss := set.Weekly[0]
	require.Equal(t, model.FreqWeekly, floss.Freq)
	require.Equal(t, model.DayMon|model.DayWed|model.DayFri, floss.Days)

	run := set.Weekly[1]
	require.Equal(t, model.FreqDuWeekly, run.Freq)
	require.Equal(t, model.DayTue|model.DayThu, run.Days)

	rent := set.Monthly[0]
	require.Equal(t, []int{1}, rent.MonthDays)
}

func TestParse_RRuleWeekly(t *testing.T) {
	set, err := Parse("goals.txt", []byte(sampleGoalsFile))
	require.NoError(t, err)

	stretch := set.Weekly[2]
	require.Equal(t, "Stretch", stretch.Description)
	require.Equal(t, model.FreqWeekly, stretch.Freq)
	require.Equal(t, model.DayMon|model.DayWed, stretch.Days)
}

func TestParse_RRuleDailyAndMonthly(t *testing.T) {
	body := `rrule | Meditate | minutes | 10 | 2 | FREQ=DAILY
rrule | Budget | times | 1 | 3 | FREQ=MONTHLY;BYMONTHDAY=1,15`

	set, err := Parse("goals.txt", []byte(body))
	require.NoError(t, err)

	require.Len(t, set.Daily, 1)
	require.Equal(t, "Meditate", set.Daily[0].Description)

	require.Len(t, set.Monthly, 1)
	require.Equal(t, []int{1, 15}, set.Monthly[0].MonthDays)
}

func TestParse_MalformedLinesAreDroppedNotFatal(t *testing.T) {
	body := `daily | Drink Water | glasses | 2 | 1
this is not a goal line
weekly | Floss | times | one | 2 | mon
weekly | NoDays | times | 1 | 2
rrule | Yearly | times | 1 | 1 | FREQ=YEARLY
daily | Journal | pages | 1 | 1`

	set, err := Parse("goals.txt", []byte(body))
	require.NoError(t, err)

	require.Len(t, set.Daily, 2, "good lines around bad ones survive")
	require.Empty(t, set.Weekly)
	require.Empty(t, set.Monthly)
}

func TestParse_DropsNonPositiveExpected(t *testing.T) {
	body := `daily | Drink Water | glasses | 0 | 1`
	set, err := Parse("goals.txt", []byte(body))
	require.NoError(t, err)
	require.Zero(t, set.Len())
}
