package materialize

import (
	"fmt"

	"goaltick/internal/model"
)

// InvalidStateError signals a structurally corrupted day group: it contains
// a task variant the materializer never produces. This is fatal for the
// current pass and must propagate to the caller, not be swallowed.
type InvalidStateError struct {
	Description string
	Freq        model.Frequency
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("day group contains non-recurring task %q (frequency %s)", e.Description, e.Freq)
}

// Cluster is a day group's task list partitioned by recurrence variant.
// Each bucket preserves the original relative order of the group.
type Cluster struct {
	Daily   []*model.TaskInstance
	Weekly  []*model.TaskInstance
	Monthly []*model.TaskInstance
}

// SplitCluster partitions a group's tasks into the three recurring
// variants. Weekly and du-weekly instances share the weekly bucket. Any
// other variant means the group holds state this system did not produce,
// which is an InvalidStateError.
func SplitCluster(tasks []*model.TaskInstance) (Cluster, error) {
	var c Cluster
	for _, t := range tasks {
		switch t.Freq {
		case model.FreqDaily:
			c.Daily = append(c.Daily, t)
		case model.FreqWeekly, model.FreqDuWeekly:
			c.Weekly = append(c.Weekly, t)
		case model.FreqMonthly:
			c.Monthly = append(c.Monthly, t)
		default:
			return Cluster{}, &InvalidStateError{Description: t.Description, Freq: t.Freq}
		}
	}
	return c, nil
}
