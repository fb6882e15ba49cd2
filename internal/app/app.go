// Package app wires the collaborators into the scheduled actions the
// ticker drives: goals reload + materialization, the daily and weekly
// summaries and the future preview.
package app

import (
	"context"
	"fmt"
	"time"

	"goaltick/internal/config"
	"goaltick/internal/goals"
	appLog "goaltick/internal/log"
	"goaltick/internal/materialize"
	"goaltick/internal/model"
	"goaltick/internal/notify"
	"goaltick/internal/report"
)

// App implements timing.Actions over the repository, the materializer and
// the configured sender.
type App struct {
	cfg       *config.Config
	repo      materialize.GroupRepo
	mat       *materialize.Materializer
	sender    notify.Sender
	publisher *notify.Publisher
	now       func() time.Time
}

// New wires an App. publisher may be nil to skip the ICS export.
func New(cfg *config.Config, repo materialize.GroupRepo, mat *materialize.Materializer, sender notify.Sender, publisher *notify.Publisher, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	return &App{
		cfg:       cfg,
		repo:      repo,
		mat:       mat,
		sender:    sender,
		publisher: publisher,
		now:       now,
	}
}

// UpdateGoals re-reads the goals file and materializes the forward window.
func (a *App) UpdateGoals(ctx context.Context) error {
	set, err := goals.ParseFile(a.cfg.GoalsFile)
	if err != nil {
		return err
	}
	return a.mat.Update(ctx, set)
}

// SendDailySummary renders and sends the status for one date. A date with
// no stored group sends an empty summary rather than failing, so historic
// catch-up dates from before the first materialization still resolve.
func (a *App) SendDailySummary(ctx context.Context, date time.Time) bool {
	name := model.GroupNameFor(date)

	g, ok, err := a.repo.FindByName(ctx, name)
	if err != nil {
		appLog.Error("daily summary: group load failed", err, "date", name)
		return false
	}
	if !ok {
		g = &model.DayGroup{Name: name}
	}

	if !a.sender.Send("Daily goals - "+name, report.DailySummary(g)) {
		return false
	}

	if ok && !g.Reported {
		g.Reported = true
		if err := a.repo.AddOrUpdate(ctx, g); err != nil {
			// The summary went out; losing the flag only risks a duplicate
			// after a restart.
			appLog.Error("daily summary: reported flag not persisted", err, "date", name)
		}
	}
	return true
}

// SendFutureReport renders the upcoming window as a preview text and, when
// a publisher is wired, also exports it as an ICS calendar.
func (a *App) SendFutureReport(ctx context.Context) bool {
	groups := a.loadRange(ctx, 1, a.cfg.WindowDays)

	if a.publisher != nil {
		if serialized, err := report.BuildICS(groups); err != nil {
			appLog.Error("future report: ics build failed", err)
		} else if err := a.publisher.Publish(serialized); err != nil {
			appLog.Error("future report: ics publish failed", err, "path", a.publisher.Path())
		}
	}

	today := model.GroupNameFor(a.now())
	return a.sender.Send("Upcoming goals - "+today, report.FuturePreview(groups))
}

// SendWeeklySummary renders the last seven days, today included.
func (a *App) SendWeeklySummary(ctx context.Context) bool {
	groups := a.loadRange(ctx, -6, 0)
	today := model.GroupNameFor(a.now())
	return a.sender.Send("Weekly goals - "+today, report.WeeklySummary(groups))
}

// loadRange collects the stored groups for today+from .. today+to, oldest
// first, skipping dates that were never materialized.
func (a *App) loadRange(ctx context.Context, from, to int) []*model.DayGroup {
	now := a.now()
	out := make([]*model.DayGroup, 0, to-from+1)
	for offset := from; offset <= to; offset++ {
		name := model.GroupNameFor(now.AddDate(0, 0, offset))
		g, ok, err := a.repo.FindByName(ctx, name)
		if err != nil {
			appLog.Error("group load failed, skipped in report", err, "date", name)
			continue
		}
		if !ok {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Upcoming returns the materialized groups for the next n days, for the
// status API.
func (a *App) Upcoming(ctx context.Context, n int) []*model.DayGroup {
	if n <= 0 || n > a.cfg.WindowDays {
		n = a.cfg.WindowDays
	}
	return a.loadRange(ctx, 1, n)
}

// GroupByDate returns one stored group for the status API.
func (a *App) GroupByDate(ctx context.Context, name string) (*model.DayGroup, bool, error) {
	if _, err := time.Parse(model.GroupNameLayout, name); err != nil {
		return nil, false, fmt.Errorf("bad date %q: %w", name, err)
	}
	return a.repo.FindByName(ctx, name)
}
