package availability

import (
	"fmt"
	"time"

	"github.com/hazqeelknight/events/models"
)

// CollectBlockingIntervals expands every blocking source into a single set of
// absolute intervals intersecting the query window: one-off blocked times
// (with their own recurrence expanded when present), recurring block series
// clipped to their validity windows, and confirmed bookings widened by the
// minimum gap on both sides.
func CollectBlockingIntervals(data *models.AvailabilityData, window Interval, gap time.Duration, maxOccurrences int) ([]Interval, error) {
	var blocks []Interval

	for _, bt := range data.BlockedTimes {
		if !bt.End.After(bt.Start) {
			return nil, NewValidationError(fmt.Sprintf("blocked time %s: start must precede end", bt.ID))
		}
		if bt.Recurrence == nil {
			iv := Interval{Start: bt.Start, End: bt.End}
			if iv.Overlaps(window) {
				blocks = append(blocks, iv)
			}
			continue
		}
		expanded, err := ExpandRecurrence(*bt.Recurrence, bt.Start, bt.End.Sub(bt.Start), window, maxOccurrences)
		if err != nil {
			return nil, fmt.Errorf("blocked time %s: %w", bt.ID, err)
		}
		blocks = append(blocks, expanded...)
	}

	for _, series := range data.RecurringBlocks {
		if !series.Active {
			continue
		}
		expanded, err := expandBlockSeries(series, window, maxOccurrences)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, expanded...)
	}

	blocks = append(blocks, WidenBookings(data.Bookings, gap)...)

	return MergeIntervals(blocks), nil
}

// expandBlockSeries expands one named recurring block series, bounded by the
// intersection of its validity window and the query window.
func expandBlockSeries(series models.RecurringBlockedTime, window Interval, maxOccurrences int) ([]Interval, error) {
	if series.DurationMinutes <= 0 {
		return nil, NewValidationError(fmt.Sprintf("recurring block %s: duration must be positive", series.ID))
	}
	loc, err := loadLocation(series.Timezone)
	if err != nil {
		return nil, fmt.Errorf("recurring block %s: %w", series.ID, err)
	}

	firstDay, err := time.ParseInLocation(models.DateLayout, series.StartDate, loc)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("recurring block %s: invalid start date %q", series.ID, series.StartDate))
	}
	validity := Interval{Start: firstDay, End: window.End}
	if series.EndDate != nil {
		lastDay, err := time.ParseInLocation(models.DateLayout, *series.EndDate, loc)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("recurring block %s: invalid end date %q", series.ID, *series.EndDate))
		}
		// EndDate is inclusive: the series may still occur on that date.
		validity.End = lastDay.AddDate(0, 0, 1)
	}

	expansion, ok := validity.Intersect(window)
	if !ok {
		return nil, nil
	}

	year, month, day := firstDay.Date()
	seriesStart := time.Date(year, month, day, series.Start/60, series.Start%60, 0, 0, loc)

	expanded, err := ExpandRecurrence(
		series.Recurrence,
		seriesStart,
		time.Duration(series.DurationMinutes)*time.Minute,
		expansion,
		maxOccurrences,
	)
	if err != nil {
		return nil, fmt.Errorf("recurring block %s: %w", series.ID, err)
	}
	return expanded, nil
}

// WidenBookings turns confirmed bookings into blocking intervals extended by
// the minimum gap on both sides, which is how the gap policy is enforced:
// spacing around existing meetings becomes ordinary subtraction.
func WidenBookings(bookings []models.Booking, gap time.Duration) []Interval {
	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b.Status != "" && b.Status != "confirmed" {
			continue
		}
		if !b.End.After(b.Start) {
			continue
		}
		out = append(out, Interval{Start: b.Start.Add(-gap), End: b.End.Add(gap)})
	}
	return out
}
