// Package goals reads the goal-definition input file and turns it into the
// recurrence source the materializer consumes.
package goals

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"

	appLog "goaltick/internal/log"
	"goaltick/internal/model"
)

// The goals file is line oriented. Blank lines and lines starting with '#'
// are skipped. Fields are separated by '|':
//
//	daily    | Drink Water | glasses | 2 | 1
//	weekly   | Floss       | times   | 1 | 2 | mon,wed,fri
//	duweekly | Run         | times   | 1 | 3 | tue,thu
//	monthly  | Pay Rent    | times   | 1 | 5 | 1
//	rrule    | Stretch     | times   | 1 | 1 | FREQ=WEEKLY;BYDAY=MO,WE
//
// A malformed line is logged and dropped; it never fails the whole file.

// ParseFile reads and parses the goals file at path.
func ParseFile(path string) (*model.GoalSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("goals: read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses a goals file body. The path argument is only used for
// logging context.
func Parse(path string, body []byte) (*model.GoalSet, error) {
	set := &model.GoalSet{}
	dropped := 0

	for i, raw := range strings.Split(string(body), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		g, err := parseLine(line)
		if err != nil {
			appLog.Error("goals: dropping malformed line", err, "file", path, "line_no", i+1)
			dropped++
			continue
		}
		if err := set.Add(g); err != nil {
			appLog.Error("goals: dropping unschedulable goal", err, "file", path, "line_no", i+1)
			dropped++
			continue
		}
	}

	appLog.Info("goals parse completed", "file", path, "goal_count", set.Len(), "dropped", dropped)
	return set, nil
}

func parseLine(line string) (model.Goal, error) {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 5 {
		return model.Goal{}, fmt.Errorf("want at least 5 fields, got %d", len(fields))
	}

	kind := strings.ToLower(fields[0])
	description := fields[1]
	measure := model.Measure(fields[2])

	expected, err := strconv.Atoi(fields[3])
	if err != nil {
		return model.Goal{}, fmt.Errorf("expected count %q: %w", fields[3], err)
	}
	score, err := strconv.Atoi(fields[4])
	if err != nil {
		return model.Goal{}, fmt.Errorf("score %q: %w", fields[4], err)
	}

	extra := ""
	if len(fields) > 5 {
		extra = fields[5]
	}

	switch kind {
	case "daily":
		return model.NewDailyGoal(description, measure, expected, score)
	case "weekly", "duweekly":
		freq := model.FreqWeekly
		if kind == "duweekly" {
			freq = model.FreqDuWeekly
		}
		days, err := parseWeekdays(extra)
		if err != nil {
			return model.Goal{}, err
		}
		return model.NewWeeklyGoal(freq, description, measure, expected, score, days)
	case "monthly":
		return model.NewMonthlyGoal(description, measure, expected, score, parseMonthDays(extra))
	case "rrule":
		return parseRRuleGoal(description, measure, expected, score, extra)
	default:
		return model.Goal{}, fmt.Errorf("unknown goal kind %q", kind)
	}
}

func parseWeekdays(s string) (model.Days, error) {
	if s == "" {
		return 0, errors.New("weekly goal needs a day list")
	}
	if strings.EqualFold(s, "everyday") {
		return model.EveryDay, nil
	}

	var days model.Days
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "mon":
			days |= model.DayMon
		case "tue":
			days |= model.DayTue
		case "wed":
			days |= model.DayWed
		case "thu":
			days |= model.DayThu
		case "fri":
			days |= model.DayFri
		case "sat":
			days |= model.DaySat
		case "sun":
			days |= model.DaySun
		default:
			return 0, fmt.Errorf("unknown weekday %q", part)
		}
	}
	return days, nil
}

// parseMonthDays is permissive: non-numeric and out-of-range entries are
// dropped downstream by the goal constructor, matching its silent-drop
// contract.
func parseMonthDays(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// parseRRuleGoal maps an RRULE string onto a native goal definition.
// Supported: FREQ=DAILY, FREQ=WEEKLY with BYDAY, FREQ=MONTHLY with
// BYMONTHDAY. Anything else is rejected so the line gets dropped.
func parseRRuleGoal(description string, measure model.Measure, expected, score int, raw string) (model.Goal, error) {
	if raw == "" {
		return model.Goal{}, errors.New("rrule goal needs a rule string")
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return model.Goal{}, fmt.Errorf("rrule %q: %w", raw, err)
	}

	opt := r.Options
	switch opt.Freq {
	case rrule.DAILY:
		return model.NewDailyGoal(description, measure, expected, score)
	case rrule.WEEKLY:
		var days model.Days
		for _, wd := range opt.Byweekday {
			// rrule weekday ordinals run MO=0..SU=6, matching the Days
			// bit layout.
			days |= model.Days(1) << uint(wd.Day())
		}
		if days == 0 {
			return model.Goal{}, fmt.Errorf("rrule %q: FREQ=WEEKLY needs BYDAY", raw)
		}
		return model.NewWeeklyGoal(model.FreqWeekly, description, measure, expected, score, days)
	case rrule.MONTHLY:
		return model.NewMonthlyGoal(description, measure, expected, score, opt.Bymonthday)
	default:
		return model.Goal{}, fmt.Errorf("rrule %q: unsupported FREQ", raw)
	}
}
