package availability

import (
	"fmt"
	"time"

	"github.com/hazqeelknight/events/models"
	"github.com/hazqeelknight/events/utils"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// defaultMaxOccurrences is a defensive cap on a single series expansion.
// Query ranges are already bounded, so hitting it indicates a degenerate spec.
const defaultMaxOccurrences = 5000

var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

func rruleFrequency(frequency string) (rrule.Frequency, error) {
	switch frequency {
	case "daily":
		return rrule.DAILY, nil
	case "weekly":
		return rrule.WEEKLY, nil
	case "monthly":
		return rrule.MONTHLY, nil
	default:
		return 0, NewValidationError(fmt.Sprintf("unsupported recurrence frequency %q", frequency))
	}
}

// ValidateRecurrenceSpec rejects malformed specs before any expansion.
// A malformed spec is never silently treated as "no recurrence".
func ValidateRecurrenceSpec(spec models.RecurrenceSpec) error {
	if _, err := rruleFrequency(spec.Frequency); err != nil {
		return err
	}
	if spec.Interval < 1 {
		return NewValidationError(fmt.Sprintf("recurrence interval must be >= 1, got %d", spec.Interval))
	}
	for _, wd := range spec.ByWeekday {
		if wd < 0 || wd > 6 {
			return NewValidationError(fmt.Sprintf("recurrence weekday %d outside 0-6", wd))
		}
	}
	if spec.Count != nil && *spec.Count < 1 {
		return NewValidationError(fmt.Sprintf("recurrence count must be >= 1, got %d", *spec.Count))
	}
	return nil
}

// ExpandRecurrence turns a recurrence spec into concrete occurrence intervals
// of the given duration, clipped to the expansion window.
//
// seriesStart must be the first occurrence's wall-clock start carrying the
// series' own location: each generated occurrence is then resolved against
// the zone rule in effect on its date, so a series defined at 09:00 local
// stays at 09:00 local across daylight-saving transitions instead of
// drifting by a fixed UTC offset.
func ExpandRecurrence(
	spec models.RecurrenceSpec,
	seriesStart time.Time,
	duration time.Duration,
	window Interval,
	maxOccurrences int,
) ([]Interval, error) {
	if err := ValidateRecurrenceSpec(spec); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, NewValidationError("recurring interval duration must be positive")
	}
	if window.IsZero() {
		return nil, nil
	}
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}

	freq, err := rruleFrequency(spec.Frequency)
	if err != nil {
		return nil, err
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: spec.Interval,
		Dtstart:  seriesStart,
	}
	for _, wd := range spec.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
	}
	if spec.Count != nil {
		opt.Count = *spec.Count
	}
	if spec.Until != nil {
		opt.Until = *spec.Until
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid recurrence specification: %v", err))
	}

	// Evaluate the range in the series' own location so occurrences at the
	// window edges resolve consistently.
	loc := seriesStart.Location()
	occurrences := rule.Between(window.Start.In(loc).Add(-duration), window.End.In(loc), true)
	if len(occurrences) > maxOccurrences {
		utils.GetLogger().Warn("recurrence expansion truncated",
			zap.Int("cap", maxOccurrences),
			zap.String("frequency", spec.Frequency))
		occurrences = occurrences[:maxOccurrences]
	}

	// Occurrences keep their full extent; partial overlap with the window is
	// handled by subtraction downstream.
	out := make([]Interval, 0, len(occurrences))
	for _, start := range occurrences {
		iv := Interval{Start: start, End: start.Add(duration)}
		if iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}
