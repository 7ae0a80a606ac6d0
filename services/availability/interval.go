package availability

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End) in absolute instants.
// Timezones enter only when a slot is rendered; all interval arithmetic is
// instant-based so boundary instants are never double-counted.
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the interval is degenerate (zero or negative length).
func (iv Interval) IsZero() bool {
	return !iv.End.After(iv.Start)
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	if iv.IsZero() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Intersect returns the overlapping part of two intervals, if any.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	out := Interval{Start: start, End: end}
	if out.IsZero() {
		return Interval{}, false
	}
	return out, true
}

// IntersectDuration returns the length of the overlap between two intervals.
func (iv Interval) IntersectDuration(other Interval) time.Duration {
	out, ok := iv.Intersect(other)
	if !ok {
		return 0
	}
	return out.Duration()
}

// Subtract removes other from iv, returning 0, 1 or 2 remaining intervals.
// When other falls strictly inside iv the result is a split.
func (iv Interval) Subtract(other Interval) []Interval {
	if !iv.Overlaps(other) {
		if iv.IsZero() {
			return nil
		}
		return []Interval{iv}
	}

	var out []Interval
	if other.Start.After(iv.Start) {
		left := Interval{Start: iv.Start, End: other.Start}
		if !left.IsZero() {
			out = append(out, left)
		}
	}
	if other.End.Before(iv.End) {
		right := Interval{Start: other.End, End: iv.End}
		if !right.IsZero() {
			out = append(out, right)
		}
	}
	return out
}

// MergeIntervals sorts the given intervals and coalesces any that overlap or
// touch, dropping degenerate entries. The input slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	cleaned := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.IsZero() {
			cleaned = append(cleaned, iv)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	sort.Slice(cleaned, func(i, j int) bool {
		return cleaned[i].Start.Before(cleaned[j].Start)
	})

	out := []Interval{cleaned[0]}
	for _, iv := range cleaned[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// SubtractAll removes every blocking interval from every window. Set
// difference over a union of subtrahends is commutative, so the order of
// blocks does not affect the result.
func SubtractAll(windows, blocks []Interval) []Interval {
	remaining := make([]Interval, 0, len(windows))
	for _, w := range windows {
		if !w.IsZero() {
			remaining = append(remaining, w)
		}
	}
	for _, b := range blocks {
		if b.IsZero() {
			continue
		}
		next := make([]Interval, 0, len(remaining))
		for _, w := range remaining {
			next = append(next, w.Subtract(b)...)
		}
		remaining = next
	}
	return remaining
}
