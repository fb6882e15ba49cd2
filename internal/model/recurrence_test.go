package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyGoal_AppliesEveryDay(t *testing.T) {
	g, err := NewDailyGoal("Drink Water", "glasses", 2, 1)
	if err != nil {
		t.Fatalf("NewDailyGoal: %v", err)
	}

	start := date(2026, time.September, 1)
	for i := 0; i < 60; i++ {
		d := start.AddDate(0, 0, i)
		if !g.AppliesOn(d) {
			t.Fatalf("daily goal should apply on %s", d.Format(GroupNameLayout))
		}
	}
}

func TestWeeklyGoal_AppliesOnMaskedWeekdays(t *testing.T) {
	g, err := NewWeeklyGoal(FreqWeekly, "Floss", "times", 1, 2, DayMon|DayWed|DayFri)
	if err != nil {
		t.Fatalf("NewWeeklyGoal: %v", err)
	}

	start := date(2026, time.September, 1)
	for i := 0; i < 28; i++ {
		d := start.AddDate(0, 0, i)
		want := g.Days&WeekdayBit(d.Weekday()) != 0
		if got := g.AppliesOn(d); got != want {
			t.Fatalf("AppliesOn(%s)=%v, want %v", d.Weekday(), got, want)
		}
	}
}

func TestDuWeeklyGoal_EveryDayMaskCollapsesToDefaultDay(t *testing.T) {
	g, err := NewWeeklyGoal(FreqDuWeekly, "Run", "times", 1, 3, EveryDay)
	if err != nil {
		t.Fatalf("NewWeeklyGoal: %v", err)
	}
	if g.Days != DayMon {
		t.Fatalf("du-weekly everyday mask should collapse to Monday, got %b", g.Days)
	}

	want, err := NewWeeklyGoal(FreqDuWeekly, "Run", "times", 1, 3, DayMon)
	if err != nil {
		t.Fatalf("NewWeeklyGoal: %v", err)
	}
	start := date(2026, time.September, 1)
	for i := 0; i < 14; i++ {
		d := start.AddDate(0, 0, i)
		if g.AppliesOn(d) != want.AppliesOn(d) {
			t.Fatalf("collapsed goal diverges from explicit Monday goal on %s", d.Weekday())
		}
	}
}

func TestMonthlyGoal_AppliesOnDaySet(t *testing.T) {
	g, err := NewMonthlyGoal("Pay Rent", "times", 1, 5, []int{1, 15})
	if err != nil {
		t.Fatalf("NewMonthlyGoal: %v", err)
	}

	if !g.AppliesOn(date(2026, time.September, 1)) {
		t.Fatalf("should apply on the 1st")
	}
	if !g.AppliesOn(date(2026, time.September, 15)) {
		t.Fatalf("should apply on the 15th")
	}
	if g.AppliesOn(date(2026, time.September, 2)) {
		t.Fatalf("should not apply on the 2nd")
	}
}

func TestMonthlyGoal_InvalidDaysDroppedSilently(t *testing.T) {
	g, err := NewMonthlyGoal("Backup", "times", 1, 1, []int{0, 5, 31, -3, 42, 12})
	if err != nil {
		t.Fatalf("NewMonthlyGoal: %v", err)
	}
	want := []int{5, 12}
	if len(g.MonthDays) != len(want) {
		t.Fatalf("got days %v, want %v", g.MonthDays, want)
	}
	for i := range want {
		if g.MonthDays[i] != want[i] {
			t.Fatalf("got days %v, want %v", g.MonthDays, want)
		}
	}
}

func TestMonthlyGoal_EmptyDaysFallBackToTrailingDays(t *testing.T) {
	g, err := NewMonthlyGoal("Review", "times", 3, 1, nil)
	if err != nil {
		t.Fatalf("NewMonthlyGoal: %v", err)
	}
	want := []int{26, 27, 28}
	if len(g.MonthDays) != 3 {
		t.Fatalf("expected=3 should yield 3 trailing days, got %v", g.MonthDays)
	}
	for i := range want {
		if g.MonthDays[i] != want[i] {
			t.Fatalf("got days %v, want %v", g.MonthDays, want)
		}
	}
}

func TestGoalValidation(t *testing.T) {
	if _, err := NewDailyGoal("X", "times", 0, 1); err == nil {
		t.Fatalf("zero expected must be rejected")
	}
	if _, err := NewDailyGoal("X", "times", 1, 0); err == nil {
		t.Fatalf("zero score must be rejected")
	}
	if _, err := NewDailyGoal("", "times", 1, 1); err == nil {
		t.Fatalf("empty description must be rejected")
	}
	if _, err := NewWeeklyGoal(FreqMonthly, "X", "times", 1, 1, DayMon); err == nil {
		t.Fatalf("non-weekly frequency must be rejected")
	}
}

func TestGoalSet_AddRejectsOneTime(t *testing.T) {
	var s GoalSet
	if err := s.Add(Goal{Description: "once", Freq: FreqNotDefined, Expected: 1, Score: 1}); err == nil {
		t.Fatalf("one-time goal must not be schedulable")
	}
	if s.Len() != 0 {
		t.Fatalf("rejected goal must not be counted")
	}
}
