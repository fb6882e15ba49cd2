package materialize

import (
	"strings"

	"goaltick/internal/model"
)

// CompareResult classifies the structural difference between two day
// groups. Callers use it to pick the persistence write mode: Equal skips
// the write, TasksContentChanged updates in place, TasksAddedOrRemoved
// replaces the stored group.
type CompareResult int

const (
	NoResult CompareResult = iota
	Equal
	TasksContentChanged
	TasksAddedOrRemoved
)

func (r CompareResult) String() string {
	switch r {
	case Equal:
		return "equal"
	case TasksContentChanged:
		return "tasks_content_changed"
	case TasksAddedOrRemoved:
		return "tasks_added_or_removed"
	default:
		return "no_result"
	}
}

// requireMutualMonthDayExcess preserves the historical month-day diff
// behavior: a change is only reported when BOTH sides hold a day the other
// lacks. A one-sided excess passes as unchanged. Almost certainly a defect;
// kept literal until the follow-up that flips this flag lands, so existing
// stored groups keep classifying the same way.
const requireMutualMonthDayExcess = true

// Compare diffs two day groups.
//
// Tasks are compared pairwise by list position, not by matched identity:
// reordering a group's tasks registers as a change even when the content is
// identical. Both sides are produced by the materializer, which appends in
// definition order, so positions line up in practice. The first non-equal
// finding wins.
func Compare(a, b *model.DayGroup) CompareResult {
	if a == nil || b == nil {
		return NoResult
	}
	if !strings.EqualFold(a.ID, b.ID) || !strings.EqualFold(a.Name, b.Name) {
		return TasksAddedOrRemoved
	}
	if len(a.Tasks) != len(b.Tasks) {
		return TasksAddedOrRemoved
	}
	for i := range a.Tasks {
		if res := compareTasks(a.Tasks[i], b.Tasks[i]); res != Equal {
			return res
		}
	}
	return Equal
}

func compareTasks(a, b *model.TaskInstance) CompareResult {
	if a == nil || b == nil {
		return NoResult
	}
	if !strings.EqualFold(a.ID, b.ID) || !strings.EqualFold(a.Description, b.Description) {
		return TasksAddedOrRemoved
	}
	if a.Done != b.Done {
		return TasksContentChanged
	}
	if a.Actual != b.Actual || a.Expected != b.Expected || a.Score != b.Score {
		return TasksContentChanged
	}
	if a.Freq != b.Freq || a.Measure != b.Measure || a.Days != b.Days {
		return TasksContentChanged
	}
	if a.Freq == model.FreqMonthly && b.Freq == model.FreqMonthly {
		if monthDaysDiffer(a.MonthDays, b.MonthDays) {
			return TasksContentChanged
		}
	}
	return Equal
}

func monthDaysDiffer(a, b []int) bool {
	extraInA := hasExcess(a, b)
	extraInB := hasExcess(b, a)
	if requireMutualMonthDayExcess {
		return extraInA && extraInB
	}
	return extraInA || extraInB
}

// hasExcess reports whether a holds a day that b does not.
func hasExcess(a, b []int) bool {
	for _, d := range a {
		found := false
		for _, e := range b {
			if d == e {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}
