package model

import (
	"strings"
	"time"
)

// GroupNameLayout is the date format used as a day group's name and
// identity key.
const GroupNameLayout = "2006-01-02"

// TaskInstance is one materialized, progress-tracking occurrence of a goal
// on a specific day. The id is generated once at creation and stays stable
// across re-materializations; the description is the case-insensitive key
// used when diffing a group against the goal definitions.
type TaskInstance struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	Freq    Frequency `json:"freq"`
	Measure Measure   `json:"measure"`

	// Expected and Score mirror the producing goal and are refreshed on
	// re-materialization. Always positive.
	Expected int `json:"expected"`
	Score    int `json:"score"`

	// Actual is progress recorded so far. It is written by feedback
	// ingestion only; materialization never touches it.
	Actual int `json:"actual"`

	Done bool `json:"done"`

	// Occurrence mirror of the producing goal's predicate fields.
	Days      Days  `json:"days,omitempty"`
	MonthDays []int `json:"month_days,omitempty"`
}

// SameDescription reports whether the instance matches the given
// description, ignoring case.
func (t *TaskInstance) SameDescription(description string) bool {
	return strings.EqualFold(t.Description, description)
}

// DayGroup is the persisted bundle of task instances materialized for one
// calendar date. Created lazily when a date is first materialized, mutated
// in place afterwards, never deleted.
type DayGroup struct {
	// ID is generated once when the group is created.
	ID string `json:"id"`
	// Name is the calendar date the group belongs to, in GroupNameLayout.
	Name  string          `json:"name"`
	Tasks []*TaskInstance `json:"tasks"`

	// Reported is set once the group was included in a sent summary.
	Reported bool `json:"reported"`
}

// GroupNameFor formats a date into its day-group name.
func GroupNameFor(date time.Time) string {
	return date.Format(GroupNameLayout)
}

// FindTask returns the first task whose description matches
// case-insensitively, or nil.
func (g *DayGroup) FindTask(description string) *TaskInstance {
	for _, t := range g.Tasks {
		if t.SameDescription(description) {
			return t
		}
	}
	return nil
}
