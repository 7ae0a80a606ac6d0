package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/hazqeelknight/events/models"
	"github.com/hazqeelknight/events/utils"

	"go.uber.org/zap"
)

const defaultMaxRangeDays = 90

// CalculateSlots runs the full availability pipeline for one request, served
// from the result cache when a fresh entry exists. Concurrent requests with
// the same fingerprint coalesce onto a single computation.
func (e *DefaultAvailabilityEngine) CalculateSlots(ctx context.Context, query models.SlotQuery) (*models.CalculatedSlotsResponse, error) {
	startDate, endDate, err := e.validateQuery(query)
	if err != nil {
		return nil, err
	}

	compute := func(ctx context.Context) (*models.CalculatedSlotsResponse, error) {
		started := time.Now()
		data, err := e.Repo.GetAvailabilityData(ctx, query.OrganizerID, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("fetching availability records: %w", err)
		}
		response, err := e.ComputeFromData(ctx, query, data)
		if err != nil {
			return nil, err
		}
		response.ComputationTimeMs = time.Since(started).Milliseconds()
		e.stats.recordComputation(response.ComputationTimeMs)
		return response, nil
	}

	if e.Cache == nil {
		return compute(ctx)
	}

	response, hit, err := e.Cache.GetOrCompute(ctx, query, compute)
	if err != nil {
		return nil, err
	}
	if hit {
		e.stats.recordHit()
	}
	return response, nil
}

// ComputeFromData is the pure pipeline core over an already-fetched record
// bundle. The caller-supplied context is observed between stages, never
// mid-stage, so a cancelled request cannot yield a partially computed result.
func (e *DefaultAvailabilityEngine) ComputeFromData(ctx context.Context, query models.SlotQuery, data *models.AvailabilityData) (*models.CalculatedSlotsResponse, error) {
	logger := utils.GetLogger()

	startDate, endDate, err := e.validateQuery(query)
	if err != nil {
		return nil, err
	}
	e.stats.observeInputs(len(data.Rules), len(data.Overrides), len(data.BlockedTimes)+len(data.RecurringBlocks))

	var warnings []string
	policy := ResolveBufferPolicy(data.Buffers)
	if data.Buffers == nil {
		cfgErr := &ConfigurationMissingError{OrganizerID: query.OrganizerID, What: "buffer settings"}
		logger.Warn("availability engine: missing configuration, defaulting to zero buffers",
			zap.String("organizerID", query.OrganizerID), zap.Error(cfgErr))
		warnings = append(warnings, "no buffer settings configured; using zero buffers")
	}

	// Stage 1: raw availability windows from rules and overrides.
	windows, err := BuildWindows(startDate, endDate, data.Rules, data.Overrides)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		hasFalseOverride := false
		for _, ov := range data.Overrides {
			if !ov.IsAvailable {
				hasFalseOverride = true
				break
			}
		}
		// A range emptied purely by explicit overrides is a valid outcome,
		// not a configuration problem.
		if !hasFalseOverride {
			warnings = append(warnings, "no availability configured for this date range")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: subtract one-off blocks, recurring block series and
	// gap-widened bookings. The blocking window is padded a day on each side
	// so windows anchored in distant timezones stay covered.
	blockWindow := Interval{
		Start: startDate.AddDate(0, 0, -1),
		End:   endDate.AddDate(0, 0, 2),
	}
	blocks, err := CollectBlockingIntervals(data, blockWindow, policy.Gap, e.maxOccurrences())
	if err != nil {
		return nil, err
	}
	remaining := SubtractAll(windows, blocks)
	if len(windows) > 0 && len(remaining) == 0 {
		warnings = append(warnings, "all availability in this date range is blocked")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: buffer shrink.
	buffered, dropped := ApplyBuffers(remaining, policy)
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d window(s) shorter than the configured buffers were skipped", dropped))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: slot generation and per-invitee rendering.
	slots, err := GenerateSlots(buffered, query, e.hourBand())
	if err != nil {
		return nil, err
	}

	// Stage 5: fairness and capacity annotation.
	slots = ScoreFairness(slots, query)

	logger.Debug("availability engine: computation complete",
		zap.String("organizerID", query.OrganizerID),
		zap.String("eventType", query.EventTypeSlug),
		zap.Int("windows", len(windows)),
		zap.Int("blocks", len(blocks)),
		zap.Int("slots", len(slots)))

	return &models.CalculatedSlotsResponse{
		OrganizerID:      query.OrganizerID,
		EventTypeSlug:    query.EventTypeSlug,
		StartDate:        query.StartDate,
		EndDate:          query.EndDate,
		InviteeTimezones: query.InviteeTimezones,
		AttendeeCount:    query.AttendeeCount,
		Slots:            slots,
		TotalSlots:       len(slots),
		Warnings:         warnings,
	}, nil
}

// Invalidate drops every cached result for the organizer. The management
// layer calls this on any write to rules, overrides, blocks or buffers.
func (e *DefaultAvailabilityEngine) Invalidate(ctx context.Context, organizerID string) error {
	if e.Cache == nil {
		return nil
	}
	return e.Cache.Invalidate(ctx, organizerID)
}

// Stats returns the aggregate engine counters.
func (e *DefaultAvailabilityEngine) Stats() models.EngineStats {
	return e.stats.snapshot()
}

func (e *DefaultAvailabilityEngine) maxRangeDays() int {
	if e.MaxRangeDays > 0 {
		return e.MaxRangeDays
	}
	return defaultMaxRangeDays
}

func (e *DefaultAvailabilityEngine) maxOccurrences() int {
	if e.MaxOccurrences > 0 {
		return e.MaxOccurrences
	}
	return defaultMaxOccurrences
}

func (e *DefaultAvailabilityEngine) hourBand() HourBand {
	if e.ReasonableHours != (HourBand{}) {
		return e.ReasonableHours
	}
	return DefaultHourBand
}

// validateQuery rejects malformed requests before any computation and
// returns the parsed calendar bounds (endDate is the last included date).
func (e *DefaultAvailabilityEngine) validateQuery(query models.SlotQuery) (time.Time, time.Time, error) {
	if query.OrganizerID == "" {
		return time.Time{}, time.Time{}, NewValidationError("organizer_id is required")
	}
	if query.DurationMinutes <= 0 {
		return time.Time{}, time.Time{}, NewValidationError("duration_minutes must be positive")
	}
	if query.AttendeeCount < 0 {
		return time.Time{}, time.Time{}, NewValidationError("attendee_count must not be negative")
	}

	startDate, err := time.ParseInLocation(models.DateLayout, query.StartDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError(fmt.Sprintf("invalid start_date %q", query.StartDate))
	}
	endDate, err := time.ParseInLocation(models.DateLayout, query.EndDate, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError(fmt.Sprintf("invalid end_date %q", query.EndDate))
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, NewValidationError("end_date must not precede start_date")
	}

	days := int(endDate.Sub(startDate).Hours()/24) + 1
	if maxDays := e.maxRangeDays(); days > maxDays {
		return time.Time{}, time.Time{}, &RangeTooLargeError{Days: days, MaxDays: maxDays}
	}

	for _, name := range query.InviteeTimezones {
		if _, err := loadLocation(name); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return startDate, endDate, nil
}
