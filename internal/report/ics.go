package report

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"goaltick/internal/model"
)

// BuildICS serializes upcoming day groups into a one-way ICS export: one
// all-day VEVENT per scheduled task instance, so the preview can be opened
// in any calendar client. Instance ids keep the event UIDs stable across
// re-exports.
func BuildICS(groups []*model.DayGroup) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for _, g := range groups {
		day, err := time.Parse(model.GroupNameLayout, g.Name)
		if err != nil {
			return "", fmt.Errorf("report: group name %q is not a date: %w", g.Name, err)
		}

		for _, t := range g.Tasks {
			ev := cal.AddEvent(t.ID + "@goaltick")
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ev.SetSummary(t.Description)
			ev.SetDescription(fmt.Sprintf("%d %s, score %d", t.Expected, t.Measure, t.Score))
		}
	}

	return cal.Serialize(), nil
}
