package timing

import (
	"context"
	"errors"
	"time"

	appLog "goaltick/internal/log"
	"goaltick/internal/model"
)

const defaultLockWait = 2 * time.Minute

// Actions are the scheduled operations the ticker drives. UpdateGoals
// reloads definitions and materializes the forward window; the Send
// methods report success as a bool, and a false leaves the trigger armed
// for a retry on the next tick.
type Actions interface {
	UpdateGoals(ctx context.Context) error
	SendDailySummary(ctx context.Context, date time.Time) bool
	SendFutureReport(ctx context.Context) bool
	SendWeeklySummary(ctx context.Context) bool
}

// Ticker is the single tick entry point. The cron scheduler may fire while
// a previous tick still runs, so Tick takes a process-wide lock with a
// bounded wait and simply drops the tick when the wait times out.
type Ticker struct {
	state   *State
	catchup *CatchUp
	actions Actions

	notifyHour int
	weeklyDay  time.Weekday

	// goalsDirty, when set, reports (and consumes) whether the goals file
	// changed since the last reload.
	goalsDirty func() bool

	sem      chan struct{}
	lockWait time.Duration
	now      func() time.Time
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithTickerNow overrides the clock, for tests.
func WithTickerNow(now func() time.Time) TickerOption {
	return func(t *Ticker) { t.now = now }
}

// WithLockWait overrides the bounded wait for the tick lock.
func WithLockWait(d time.Duration) TickerOption {
	return func(t *Ticker) {
		if d > 0 {
			t.lockWait = d
		}
	}
}

// WithGoalsDirty installs the goals-file dirty check.
func WithGoalsDirty(f func() bool) TickerOption {
	return func(t *Ticker) { t.goalsDirty = f }
}

// NewTicker wires the state machine, catch-up set and actions together.
func NewTicker(state *State, catchup *CatchUp, actions Actions, notifyHour int, weeklyDay time.Weekday, opts ...TickerOption) *Ticker {
	t := &Ticker{
		state:      state,
		catchup:    catchup,
		actions:    actions,
		notifyHour: notifyHour,
		weeklyDay:  weeklyDay,
		sem:        make(chan struct{}, 1),
		lockWait:   defaultLockWait,
		now:        time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tick runs one scheduling cycle. All four triggers are evaluated
// independently and unconditionally; only those that are due run, and only
// a confirmed success marks a trigger done. Trigger failures are never
// fatal.
func (t *Ticker) Tick(ctx context.Context) {
	select {
	case t.sem <- struct{}{}:
	case <-time.After(t.lockWait):
		appLog.Info("tick dropped, previous tick still running", "waited", t.lockWait.String())
		return
	case <-ctx.Done():
		return
	}
	defer func() { <-t.sem }()

	now := t.now()
	today := model.GroupNameFor(now)

	t.state.ResetOnMidnight(now)
	t.catchup.Ensure(today)

	t.runGoalsUpdate(ctx)
	t.runDailySummary(ctx, now, today)
	t.runCatchUp(ctx, today)
	t.runFutureReport(ctx, now)
	t.runWeeklySummary(ctx, now)
}

func (t *Ticker) runGoalsUpdate(ctx context.Context) {
	dirty := t.goalsDirty != nil && t.goalsDirty()
	if !t.state.GoalsUpdate.ShouldDo() && !dirty {
		return
	}
	if err := t.actions.UpdateGoals(ctx); err != nil {
		appLog.Error("goals update failed, will retry next tick", err)
		return
	}
	t.state.GoalsUpdate.SetDone()
}

func (t *Ticker) runDailySummary(ctx context.Context, now time.Time, today string) {
	if now.Hour() != t.notifyHour || !t.state.DailySummary.ShouldDo(today) {
		return
	}
	if !t.actions.SendDailySummary(ctx, now) {
		appLog.Info("daily summary not confirmed, will retry next tick", "date", today)
		return
	}
	t.state.DailySummary.SetDone(today)
	t.catchup.SetDone(today)
}

// runCatchUp retries the daily summary for every unconfirmed historical
// date, every tick, until each one succeeds. Today is excluded here; it is
// owned by the notify-hour gated trigger above.
func (t *Ticker) runCatchUp(ctx context.Context, today string) {
	for _, date := range t.catchup.Dates() {
		if date == today {
			continue
		}
		day, err := time.Parse(model.GroupNameLayout, date)
		if err != nil {
			// Entries loaded through NewCatchUp always parse; drop the
			// stray value instead of retrying it forever.
			appLog.Error("catch-up: removing unparseable date", err, "date", date)
			t.catchup.SetDone(date)
			continue
		}
		if t.actions.SendDailySummary(ctx, day) {
			t.catchup.SetDone(date)
			appLog.Info("catch-up summary confirmed", "date", date)
		}
	}
}

func (t *Ticker) runFutureReport(ctx context.Context, now time.Time) {
	if now.Hour() != t.notifyHour || !t.state.FutureReport.ShouldDo() {
		return
	}
	if !t.actions.SendFutureReport(ctx) {
		appLog.Info("future report not confirmed, will retry next tick")
		return
	}
	t.state.FutureReport.SetDone()
}

func (t *Ticker) runWeeklySummary(ctx context.Context, now time.Time) {
	if now.Hour() != t.notifyHour || now.Weekday() != t.weeklyDay || !t.state.WeeklySummary.ShouldDo() {
		return
	}
	if !t.actions.SendWeeklySummary(ctx) {
		appLog.Info("weekly summary not confirmed, will retry next tick")
		return
	}
	t.state.WeeklySummary.SetDone()
}

// ParseWeekday maps a config weekday name onto time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	switch name {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, errors.New("unknown weekday: " + name)
	}
}
