// Package timing holds the idempotent trigger state machine: per-action
// done flags with an edge-triggered midnight reset, the persisted catch-up
// set of unconfirmed dates, and the tick entry point that drives both.
package timing

import "time"

// ChangeFunc is notified whenever a handler's done flag flips.
type ChangeFunc func(done bool)

// Handler is a single idempotent done flag. ShouldDo reads as "not done".
type Handler struct {
	done     bool
	onChange ChangeFunc
}

// NewHandler builds a handler in the NotDone state. onChange may be nil.
func NewHandler(onChange ChangeFunc) *Handler {
	return &Handler{onChange: onChange}
}

func (h *Handler) SetDone() {
	if h.done {
		return
	}
	h.done = true
	if h.onChange != nil {
		h.onChange(true)
	}
}

func (h *Handler) SetNotDone() {
	if !h.done {
		return
	}
	h.done = false
	if h.onChange != nil {
		h.onChange(false)
	}
}

func (h *Handler) ShouldDo() bool {
	return !h.done
}

// DateHandler is a done flag addressable by calendar date, for the daily
// trigger where "done" is a per-date fact rather than a single bit.
type DateHandler struct {
	done     map[string]bool
	onChange ChangeFunc
}

func NewDateHandler(onChange ChangeFunc) *DateHandler {
	return &DateHandler{
		done:     map[string]bool{},
		onChange: onChange,
	}
}

func (h *DateHandler) SetDone(date string) {
	if h.done[date] {
		return
	}
	h.done[date] = true
	if h.onChange != nil {
		h.onChange(true)
	}
}

func (h *DateHandler) SetNotDone(date string) {
	if !h.done[date] {
		return
	}
	delete(h.done, date)
	if h.onChange != nil {
		h.onChange(false)
	}
}

func (h *DateHandler) ShouldDo(date string) bool {
	return !h.done[date]
}

// Reset clears all per-date flags back to NotDone.
func (h *DateHandler) Reset() {
	h.done = map[string]bool{}
}

// State bundles the four trigger handlers plus the midnight-reset edge
// flag. It is owned by the Ticker and mutated only inside the locked tick.
type State struct {
	GoalsUpdate   *Handler
	DailySummary  *DateHandler
	FutureReport  *Handler
	WeeklySummary *Handler

	// midnightApplied guards the reset so it fires exactly once per
	// calendar-day crossing, not once per tick while the hour stays 0.
	midnightApplied bool
}

func NewState() *State {
	return &State{
		GoalsUpdate:   NewHandler(nil),
		DailySummary:  NewDateHandler(nil),
		FutureReport:  NewHandler(nil),
		WeeklySummary: NewHandler(nil),
	}
}

// ResetOnMidnight arms all handlers back to NotDone the first time a tick
// lands in hour 0; any tick in a later hour re-arms the reset for the next
// midnight.
func (s *State) ResetOnMidnight(now time.Time) {
	if now.Hour() != 0 {
		s.midnightApplied = false
		return
	}
	if s.midnightApplied {
		return
	}
	s.GoalsUpdate.SetNotDone()
	s.DailySummary.Reset()
	s.FutureReport.SetNotDone()
	s.WeeklySummary.SetNotDone()
	s.midnightApplied = true
}
