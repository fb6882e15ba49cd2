package timing

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2026, time.September, 1, hour, 30, 0, 0, time.UTC)
}

func TestHandler_Transitions(t *testing.T) {
	var events []bool
	h := NewHandler(func(done bool) { events = append(events, done) })

	if !h.ShouldDo() {
		t.Fatalf("fresh handler must read as not done")
	}

	h.SetDone()
	if h.ShouldDo() {
		t.Fatalf("done handler must not read as due")
	}
	// Repeated SetDone is a no-op and raises no extra event.
	h.SetDone()

	h.SetNotDone()
	if !h.ShouldDo() {
		t.Fatalf("reset handler must be due again")
	}

	if len(events) != 2 || events[0] != true || events[1] != false {
		t.Fatalf("unexpected change events: %v", events)
	}
}

func TestDateHandler_IsDateAddressable(t *testing.T) {
	h := NewDateHandler(nil)

	h.SetDone("2026-09-01")
	if h.ShouldDo("2026-09-01") {
		t.Fatalf("done date must not be due")
	}
	if !h.ShouldDo("2026-09-02") {
		t.Fatalf("other dates stay due")
	}

	h.Reset()
	if !h.ShouldDo("2026-09-01") {
		t.Fatalf("reset must clear all dates")
	}
}

func TestResetOnMidnight_FiresOncePerCrossing(t *testing.T) {
	s := NewState()
	s.GoalsUpdate.SetDone()
	s.WeeklySummary.SetDone()
	s.DailySummary.SetDone("2026-08-31")

	// First tick at hour 0 applies the reset.
	s.ResetOnMidnight(at(0))
	if !s.GoalsUpdate.ShouldDo() || !s.WeeklySummary.ShouldDo() {
		t.Fatalf("midnight must reset handlers to not done")
	}
	if !s.DailySummary.ShouldDo("2026-08-31") {
		t.Fatalf("midnight must clear the date handler")
	}

	// Second tick in the same hour is a no-op.
	s.GoalsUpdate.SetDone()
	s.ResetOnMidnight(at(0))
	if s.GoalsUpdate.ShouldDo() {
		t.Fatalf("second hour-0 tick must not reset again")
	}
}

func TestResetOnMidnight_ReArmsAfterNonZeroHour(t *testing.T) {
	s := NewState()

	s.ResetOnMidnight(at(0))
	s.GoalsUpdate.SetDone()

	// Leaving hour 0 re-arms the reset; the next hour-0 tick applies it
	// again.
	s.ResetOnMidnight(at(1))
	if s.GoalsUpdate.ShouldDo() {
		t.Fatalf("non-midnight tick must not reset")
	}

	s.ResetOnMidnight(at(0))
	if !s.GoalsUpdate.ShouldDo() {
		t.Fatalf("re-armed reset must apply on the next hour-0 tick")
	}
}
