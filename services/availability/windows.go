package availability

import (
	"fmt"
	"time"

	"github.com/hazqeelknight/events/models"
)

const minutesPerDay = 24 * 60

// loadLocation resolves an IANA zone name, treating the empty string as UTC.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid timezone %q", name))
	}
	return loc, nil
}

// windowOnDate resolves a [startMin, endMin) wall-clock window on the given
// calendar date into absolute instants using the zone rule in effect on that
// date. time.Date normalizes minute 1440 to the next day's midnight, which
// keeps full-day windows correct across daylight-saving transitions.
func windowOnDate(year int, month time.Month, day, startMin, endMin int, loc *time.Location) Interval {
	return Interval{
		Start: time.Date(year, month, day, startMin/60, startMin%60, 0, 0, loc),
		End:   time.Date(year, month, day, endMin/60, endMin%60, 0, 0, loc),
	}
}

// BuildWindows combines weekly rules and date overrides into the organizer's
// raw availability windows for every calendar date in [startDate, endDate].
//
// An override takes strict precedence for its date: is_available=false yields
// no windows, is_available=true with times yields exactly that window, and
// with times absent the whole calendar date is available. Dates with neither
// a matching rule nor an override yield nothing, which is a valid
// "unavailable this day" outcome rather than an error.
func BuildWindows(startDate, endDate time.Time, rules []models.AvailabilityRule, overrides []models.DateOverride) ([]Interval, error) {
	overrideByDate := make(map[string]models.DateOverride, len(overrides))
	for _, ov := range overrides {
		overrideByDate[ov.Date] = ov
	}

	rulesByWeekday := make(map[time.Weekday][]models.AvailabilityRule)
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
			return nil, NewValidationError(fmt.Sprintf("rule %s: day_of_week %d outside 0-6", rule.ID, rule.DayOfWeek))
		}
		if rule.Start >= rule.End {
			return nil, NewValidationError(fmt.Sprintf("rule %s: start %d must precede end %d", rule.ID, rule.Start, rule.End))
		}
		if rule.Start < 0 || rule.End > minutesPerDay {
			return nil, NewValidationError(fmt.Sprintf("rule %s: window outside the day", rule.ID))
		}
		rulesByWeekday[time.Weekday(rule.DayOfWeek)] = append(rulesByWeekday[time.Weekday(rule.DayOfWeek)], rule)
	}

	var windows []Interval
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		year, month, day := d.Date()

		if ov, ok := overrideByDate[d.Format(models.DateLayout)]; ok {
			if !ov.IsAvailable {
				continue
			}
			loc, err := loadLocation(ov.Timezone)
			if err != nil {
				return nil, err
			}
			startMin, endMin := 0, minutesPerDay
			if ov.Start != nil && ov.End != nil {
				startMin, endMin = *ov.Start, *ov.End
				if startMin >= endMin {
					return nil, NewValidationError(fmt.Sprintf("override %s: start %d must precede end %d", ov.ID, startMin, endMin))
				}
			}
			windows = append(windows, windowOnDate(year, month, day, startMin, endMin, loc))
			continue
		}

		dayRules := rulesByWeekday[d.Weekday()]
		if len(dayRules) == 0 {
			continue
		}
		dayWindows := make([]Interval, 0, len(dayRules))
		for _, rule := range dayRules {
			loc, err := loadLocation(rule.Timezone)
			if err != nil {
				return nil, err
			}
			dayWindows = append(dayWindows, windowOnDate(year, month, day, rule.Start, rule.End, loc))
		}
		windows = append(windows, MergeIntervals(dayWindows)...)
	}

	return MergeIntervals(windows), nil
}
