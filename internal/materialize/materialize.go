package materialize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appLog "goaltick/internal/log"
	"goaltick/internal/model"
)

const defaultWindowDays = 40

// GroupRepo is the persistence collaborator the materializer writes day
// groups through. Add fails when a group of the same name already exists;
// AddOrUpdate is an idempotent upsert.
type GroupRepo interface {
	FindByName(ctx context.Context, name string) (*model.DayGroup, bool, error)
	Add(ctx context.Context, g *model.DayGroup) error
	AddOrUpdate(ctx context.Context, g *model.DayGroup) error
	List(ctx context.Context) ([]string, error)
}

// CreateGroup builds a fresh, empty day group for the given name.
func CreateGroup(name string) (*model.DayGroup, error) {
	if name == "" {
		return nil, errors.New("materialize: group name is empty")
	}
	if _, err := time.Parse(model.GroupNameLayout, name); err != nil {
		return nil, fmt.Errorf("materialize: group name %q is not a date: %w", name, err)
	}
	return &model.DayGroup{
		ID:   uuid.NewString(),
		Name: name,
	}, nil
}

// CreateTask materializes a goal into the group using the given producer
// and appends the new instance.
func CreateTask(g *model.DayGroup, goal model.Goal, p Producer) (*model.TaskInstance, error) {
	if g == nil {
		return nil, errors.New("materialize: group is nil")
	}
	if p == nil {
		return nil, fmt.Errorf("materialize: no producer for goal %q (frequency %s)", goal.Description, goal.Freq)
	}
	t := p.Produce(goal)
	g.Tasks = append(g.Tasks, t)
	return t, nil
}

// Materializer expands goal definitions into per-day task instances over a
// forward window of calendar days, diffing against what is already
// persisted for each date.
type Materializer struct {
	repo      GroupRepo
	producers map[model.Frequency]Producer
	window    int
	now       func() time.Time
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithWindow overrides the forward-window size in days.
func WithWindow(days int) Option {
	return func(m *Materializer) {
		if days > 0 {
			m.window = days
		}
	}
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(m *Materializer) { m.now = now }
}

// WithProducers overrides the producer registry.
func WithProducers(p map[model.Frequency]Producer) Option {
	return func(m *Materializer) { m.producers = p }
}

// New builds a Materializer over the given repository.
func New(repo GroupRepo, opts ...Option) *Materializer {
	m := &Materializer{
		repo:      repo,
		producers: DefaultProducers(),
		window:    defaultWindowDays,
		now:       time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Update materializes the goal set over the next window of days, starting
// tomorrow. Each date's group is resolved (or lazily created), reconciled
// bucket by bucket against the applicable definitions, and persisted per
// date whenever the reconciliation changed it.
//
// Per-date persistence failures are logged and the date skipped; a
// structurally corrupted group (unexpected task variant) aborts the whole
// pass with an InvalidStateError.
func (m *Materializer) Update(ctx context.Context, goals *model.GoalSet) error {
	if goals == nil {
		return errors.New("materialize: goal set is nil")
	}

	today := m.now()
	updated := 0

	for offset := 1; offset <= m.window; offset++ {
		date := today.AddDate(0, 0, offset)
		name := model.GroupNameFor(date)

		group, err := m.resolveGroup(ctx, name)
		if err != nil {
			appLog.Error("materialize: group unavailable, date skipped", err, "date", name)
			continue
		}

		cluster, err := SplitCluster(group.Tasks)
		if err != nil {
			// Corrupted state, abort the pass.
			return err
		}

		before := cloneGroup(group)

		m.reconcile(group, cluster.Daily, goals.Daily, date)
		if err := m.persistIfChanged(ctx, before, group); err != nil {
			appLog.Error("materialize: persist failed, date skipped", err, "date", name)
			continue
		}

		before = cloneGroup(group)
		m.reconcile(group, cluster.Weekly, goals.Weekly, date)
		if err := m.persistIfChanged(ctx, before, group); err != nil {
			appLog.Error("materialize: persist failed, date skipped", err, "date", name)
			continue
		}

		before = cloneGroup(group)
		m.reconcile(group, cluster.Monthly, goals.Monthly, date)
		if err := m.persistIfChanged(ctx, before, group); err != nil {
			appLog.Error("materialize: persist failed, date skipped", err, "date", name)
			continue
		}

		updated++
	}

	appLog.Info("materialize: pass completed",
		"window_days", m.window,
		"dates_updated", updated,
		"definitions", goals.Len(),
	)
	return nil
}

// resolveGroup finds the day group by name, creating and persisting a new
// one on miss.
func (m *Materializer) resolveGroup(ctx context.Context, name string) (*model.DayGroup, error) {
	group, ok, err := m.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if ok {
		return group, nil
	}

	group, err = CreateGroup(name)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Add(ctx, group); err != nil {
		return nil, err
	}
	appLog.Debug("materialize: created day group", "date", name)
	return group, nil
}

// reconcile walks the definitions applicable on date and syncs them into
// the group against the existing same-variant instances. A matched
// instance only has expected and measure refreshed; actual is never
// touched. Unmatched definitions produce a new instance.
func (m *Materializer) reconcile(group *model.DayGroup, existing []*model.TaskInstance, defs []model.Goal, date time.Time) {
	for _, def := range defs {
		if !def.AppliesOn(date) {
			continue
		}

		if t := findByDescription(existing, def.Description); t != nil {
			if t.Expected != def.Expected {
				t.Expected = def.Expected
			}
			if t.Measure != def.Measure {
				t.Measure = def.Measure
			}
			continue
		}

		p := m.producers[def.Freq]
		if p == nil {
			appLog.Error("materialize: no producer registered, task skipped",
				fmt.Errorf("frequency %s unmapped", def.Freq),
				"description", def.Description,
			)
			continue
		}
		if _, err := CreateTask(group, def, p); err != nil {
			appLog.Error("materialize: task creation failed, task skipped", err,
				"description", def.Description, "date", group.Name)
		}
	}
}

func (m *Materializer) persistIfChanged(ctx context.Context, before, after *model.DayGroup) error {
	if Compare(before, after) == Equal {
		return nil
	}
	return m.repo.AddOrUpdate(ctx, after)
}

func findByDescription(tasks []*model.TaskInstance, description string) *model.TaskInstance {
	for _, t := range tasks {
		if t.SameDescription(description) {
			return t
		}
	}
	return nil
}

func cloneGroup(g *model.DayGroup) *model.DayGroup {
	out := &model.DayGroup{
		ID:       g.ID,
		Name:     g.Name,
		Reported: g.Reported,
		Tasks:    make([]*model.TaskInstance, 0, len(g.Tasks)),
	}
	for _, t := range g.Tasks {
		c := *t
		c.MonthDays = append([]int(nil), t.MonthDays...)
		out.Tasks = append(out.Tasks, &c)
	}
	return out
}
