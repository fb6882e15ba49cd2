package model

import (
	"fmt"
	"time"
)

// Frequency is the recurrence cadence of a goal definition.
type Frequency uint8

const (
	// FreqNotDefined marks a one-time entry with no recurrence.
	FreqNotDefined Frequency = iota
	FreqDaily
	FreqWeekly
	// FreqDuWeekly is the twice-a-week variant; it shares the weekday
	// bitmask predicate with FreqWeekly.
	FreqDuWeekly
	FreqMonthly
)

func (f Frequency) String() string {
	switch f {
	case FreqDaily:
		return "daily"
	case FreqWeekly:
		return "weekly"
	case FreqDuWeekly:
		return "duweekly"
	case FreqMonthly:
		return "monthly"
	default:
		return "notdefined"
	}
}

// Days is a 7-bit weekday bitmask. Bits are OR-combinable.
type Days uint8

const (
	DayMon Days = 1 << iota
	DayTue
	DayWed
	DayThu
	DayFri
	DaySat
	DaySun

	// EveryDay is all seven weekday bits set.
	EveryDay Days = DayMon | DayTue | DayWed | DayThu | DayFri | DaySat | DaySun
)

// WeekdayBit maps a time.Weekday onto its single Days bit.
func WeekdayBit(wd time.Weekday) Days {
	switch wd {
	case time.Monday:
		return DayMon
	case time.Tuesday:
		return DayTue
	case time.Wednesday:
		return DayWed
	case time.Thursday:
		return DayThu
	case time.Friday:
		return DayFri
	case time.Saturday:
		return DaySat
	default:
		return DaySun
	}
}

// Contains reports whether all bits of other are set in d.
func (d Days) Contains(other Days) bool {
	return d&other == other
}

// lastFallbackMonthDay is the final day of the generated trailing-days
// fallback for monthly goals constructed without an explicit day set.
// Stops at 28 so the fallback exists in every month, February included.
const lastFallbackMonthDay = 28

// NormalizeMonthDays drops values outside (0,31) and returns the surviving
// days in their original relative order, deduplicated. The invalid values
// are dropped silently; callers that care should validate before calling.
func NormalizeMonthDays(days []int) []int {
	out := make([]int, 0, len(days))
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if d <= 0 || d >= 31 {
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// FallbackMonthDays generates the default day-of-month set for a monthly
// goal that was built without one: expected trailing days ending at
// lastFallbackMonthDay (e.g. expected=3 gives 26,27,28).
func FallbackMonthDays(expected int) []int {
	start := lastFallbackMonthDay - expected + 1
	if start < 1 {
		start = 1
	}
	out := make([]int, 0, expected)
	for d := start; d <= lastFallbackMonthDay; d++ {
		out = append(out, d)
	}
	return out
}

// Measure is the unit a goal's progress is counted in (e.g. "times",
// "glasses", "minutes").
type Measure string

// Goal is an immutable recurrence definition: one abstract recurring goal
// as parsed from the goals file, before materialization into dated task
// instances.
type Goal struct {
	// Description is the unique key of the goal within one goals file.
	Description string

	Freq    Frequency
	Measure Measure

	// Expected is the target progress count per occurrence. Always > 0.
	Expected int
	// Score is the weight of the goal in summaries. Always > 0.
	Score int

	// Days is the weekday bitmask for weekly/du-weekly goals.
	Days Days
	// MonthDays is the ordered day-of-month set for monthly goals.
	MonthDays []int
}

func validateGoal(description string, expected, score int) error {
	if description == "" {
		return fmt.Errorf("goal: empty description")
	}
	if expected <= 0 {
		return fmt.Errorf("goal %q: expected must be positive, got %d", description, expected)
	}
	if score <= 0 {
		return fmt.Errorf("goal %q: score must be positive, got %d", description, score)
	}
	return nil
}

// NewDailyGoal builds a goal that applies on every date.
func NewDailyGoal(description string, measure Measure, expected, score int) (Goal, error) {
	if err := validateGoal(description, expected, score); err != nil {
		return Goal{}, err
	}
	return Goal{
		Description: description,
		Freq:        FreqDaily,
		Measure:     measure,
		Expected:    expected,
		Score:       score,
	}, nil
}

// NewWeeklyGoal builds a weekly or du-weekly goal from a weekday bitmask.
//
// A du-weekly goal constructed with the EveryDay mask collapses to a single
// default day (Monday). That collapse is long-standing behavior downstream
// consumers rely on; do not change it silently.
func NewWeeklyGoal(freq Frequency, description string, measure Measure, expected, score int, days Days) (Goal, error) {
	if freq != FreqWeekly && freq != FreqDuWeekly {
		return Goal{}, fmt.Errorf("goal %q: frequency %s is not a weekly variant", description, freq)
	}
	if err := validateGoal(description, expected, score); err != nil {
		return Goal{}, err
	}
	if freq == FreqDuWeekly && days == EveryDay {
		days = DayMon
	}
	return Goal{
		Description: description,
		Freq:        freq,
		Measure:     measure,
		Expected:    expected,
		Score:       score,
		Days:        days,
	}, nil
}

// NewMonthlyGoal builds a monthly goal. Day-of-month values outside (0,31)
// are dropped silently; if none survive (or none were given), a trailing-
// days fallback derived from expected is generated instead.
func NewMonthlyGoal(description string, measure Measure, expected, score int, monthDays []int) (Goal, error) {
	if err := validateGoal(description, expected, score); err != nil {
		return Goal{}, err
	}
	days := NormalizeMonthDays(monthDays)
	if len(days) == 0 {
		days = FallbackMonthDays(expected)
	}
	return Goal{
		Description: description,
		Freq:        FreqMonthly,
		Measure:     measure,
		Expected:    expected,
		Score:       score,
		MonthDays:   days,
	}, nil
}

// AppliesOn reports whether the goal occurs on the given date.
func (g Goal) AppliesOn(date time.Time) bool {
	switch g.Freq {
	case FreqDaily:
		return true
	case FreqWeekly, FreqDuWeekly:
		return g.Days&WeekdayBit(date.Weekday()) != 0
	case FreqMonthly:
		for _, d := range g.MonthDays {
			if d == date.Day() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// GoalSet is a recurrence source: goal definitions already split by
// frequency, the shape the materializer consumes. Weekly holds both the
// weekly and du-weekly variants.
type GoalSet struct {
	Daily   []Goal
	Weekly  []Goal
	Monthly []Goal
}

// Add routes a goal into its frequency bucket. Goals with an unsupported
// frequency (one-time entries) are rejected.
func (s *GoalSet) Add(g Goal) error {
	switch g.Freq {
	case FreqDaily:
		s.Daily = append(s.Daily, g)
	case FreqWeekly, FreqDuWeekly:
		s.Weekly = append(s.Weekly, g)
	case FreqMonthly:
		s.Monthly = append(s.Monthly, g)
	default:
		return fmt.Errorf("goal %q: frequency %s cannot be scheduled", g.Description, g.Freq)
	}
	return nil
}

// Len returns the total number of definitions across all buckets.
func (s *GoalSet) Len() int {
	return len(s.Daily) + len(s.Weekly) + len(s.Monthly)
}
