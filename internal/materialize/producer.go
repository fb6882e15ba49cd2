package materialize

import (
	"github.com/google/uuid"

	"goaltick/internal/model"
)

// Producer builds a fresh task instance from a goal definition. One
// producer exists per recurrence variant; the materializer resolves the
// producer by the goal's frequency and skips the goal (logged, non-fatal)
// when no producer is registered for it.
type Producer interface {
	Produce(g model.Goal) *model.TaskInstance
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc func(g model.Goal) *model.TaskInstance

func (f ProducerFunc) Produce(g model.Goal) *model.TaskInstance {
	return f(g)
}

func newInstance(g model.Goal) *model.TaskInstance {
	return &model.TaskInstance{
		ID:          uuid.NewString(),
		Description: g.Description,
		Freq:        g.Freq,
		Measure:     g.Measure,
		Expected:    g.Expected,
		Score:       g.Score,
	}
}

// DailyProducer materializes daily goals.
func DailyProducer() Producer {
	return ProducerFunc(func(g model.Goal) *model.TaskInstance {
		return newInstance(g)
	})
}

// WeeklyProducer materializes weekly and du-weekly goals, carrying the
// weekday bitmask onto the instance.
func WeeklyProducer() Producer {
	return ProducerFunc(func(g model.Goal) *model.TaskInstance {
		t := newInstance(g)
		t.Days = g.Days
		return t
	})
}

// MonthlyProducer materializes monthly goals, carrying the day-of-month
// set onto the instance.
func MonthlyProducer() Producer {
	return ProducerFunc(func(g model.Goal) *model.TaskInstance {
		t := newInstance(g)
		t.MonthDays = append([]int(nil), g.MonthDays...)
		return t
	})
}

// DefaultProducers returns the producer registry for all three recurring
// variants, keyed by frequency.
func DefaultProducers() map[model.Frequency]Producer {
	daily := DailyProducer()
	weekly := WeeklyProducer()
	monthly := MonthlyProducer()
	return map[model.Frequency]Producer{
		model.FreqDaily:    daily,
		model.FreqWeekly:   weekly,
		model.FreqDuWeekly: weekly,
		model.FreqMonthly:  monthly,
	}
}
