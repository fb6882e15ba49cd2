// Package report renders day groups into the texts the notification
// triggers send: daily and weekly summaries and the future-tasks preview.
// Everything here is pure formatting over already-loaded groups.
package report

import (
	"fmt"
	"strings"

	"goaltick/internal/model"
)

// taskDone reports whether the instance reached its target.
func taskDone(t *model.TaskInstance) bool {
	return t.Done || t.Actual >= t.Expected
}

// Score tallies earned vs possible score over a group's tasks. A task
// earns its full score once its target is reached; there is no partial
// credit.
func Score(g *model.DayGroup) (earned, possible int) {
	for _, t := range g.Tasks {
		possible += t.Score
		if taskDone(t) {
			earned += t.Score
		}
	}
	return earned, possible
}

func writeTaskLine(b *strings.Builder, t *model.TaskInstance) {
	mark := " "
	if taskDone(t) {
		mark = "x"
	}
	fmt.Fprintf(b, "  [%s] %s: %d/%d %s (score %d)\n",
		mark, t.Description, t.Actual, t.Expected, t.Measure, t.Score)
}

// DailySummary renders one day group as the daily status text.
func DailySummary(g *model.DayGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goals for %s\n\n", g.Name)

	if len(g.Tasks) == 0 {
		b.WriteString("  (no goals scheduled)\n")
		return b.String()
	}

	for _, t := range g.Tasks {
		writeTaskLine(&b, t)
	}

	earned, possible := Score(g)
	fmt.Fprintf(&b, "\nScore: %d/%d\n", earned, possible)
	return b.String()
}

// WeeklySummary renders the past week's groups, oldest first, with a
// per-day and total score tally.
func WeeklySummary(groups []*model.DayGroup) string {
	var b strings.Builder
	b.WriteString("Weekly summary\n")

	totalEarned, totalPossible := 0, 0
	for _, g := range groups {
		earned, possible := Score(g)
		totalEarned += earned
		totalPossible += possible

		done := 0
		for _, t := range g.Tasks {
			if taskDone(t) {
				done++
			}
		}
		fmt.Fprintf(&b, "\n%s - %d/%d goals, score %d/%d\n", g.Name, done, len(g.Tasks), earned, possible)
		for _, t := range g.Tasks {
			writeTaskLine(&b, t)
		}
	}

	fmt.Fprintf(&b, "\nTotal score: %d/%d\n", totalEarned, totalPossible)
	return b.String()
}

// FuturePreview renders the upcoming groups as a compact what-is-coming
// list, one line per scheduled goal.
func FuturePreview(groups []*model.DayGroup) string {
	var b strings.Builder
	b.WriteString("Upcoming goals\n")

	for _, g := range groups {
		if len(g.Tasks) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", g.Name)
		for _, t := range g.Tasks {
			fmt.Fprintf(&b, "  - %s (%d %s)\n", t.Description, t.Expected, t.Measure)
		}
	}
	return b.String()
}
