package availability

import (
	"time"

	"github.com/hazqeelknight/events/models"
)

// BufferPolicy is the resolved buffer configuration for one computation.
type BufferPolicy struct {
	Before time.Duration
	After  time.Duration
	Gap    time.Duration
}

// ResolveBufferPolicy converts the organizer's buffer settings into durations.
// A nil settings record resolves to zero buffers; the caller is expected to
// record the ConfigurationMissingError as a warning rather than fail.
func ResolveBufferPolicy(settings *models.BufferSettings) BufferPolicy {
	if settings == nil {
		return BufferPolicy{}
	}
	clamp := func(minutes int) time.Duration {
		if minutes < 0 {
			return 0
		}
		return time.Duration(minutes) * time.Minute
	}
	return BufferPolicy{
		Before: clamp(settings.BufferBefore),
		After:  clamp(settings.BufferAfter),
		Gap:    clamp(settings.MinimumGap),
	}
}

// ApplyBuffers shrinks every window by the before/after buffers. Windows too
// short to survive the combined shrink are dropped; the returned count lets
// the caller surface a warning instead of failing the request.
func ApplyBuffers(windows []Interval, policy BufferPolicy) (buffered []Interval, dropped int) {
	if policy.Before == 0 && policy.After == 0 {
		return windows, 0
	}
	for _, w := range windows {
		shrunk := Interval{Start: w.Start.Add(policy.Before), End: w.End.Add(-policy.After)}
		if shrunk.IsZero() {
			dropped++
			continue
		}
		buffered = append(buffered, shrunk)
	}
	return buffered, dropped
}
