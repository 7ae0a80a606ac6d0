package availability

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazqeelknight/events/models"
)

// fakeRepo returns a canned record bundle, standing in for Mongo.
type fakeRepo struct {
	data  *models.AvailabilityData
	err   error
	calls atomic.Int64
}

func (r *fakeRepo) GetAvailabilityData(ctx context.Context, organizerID string, from, to time.Time) (*models.AvailabilityData, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return r.data, nil
}

func newTestEngine(data *models.AvailabilityData) (*DefaultAvailabilityEngine, *fakeRepo) {
	repo := &fakeRepo{data: data}
	return &DefaultAvailabilityEngine{Repo: repo}, repo
}

func workdayData() *models.AvailabilityData {
	return &models.AvailabilityData{
		Rules:   []models.AvailabilityRule{mondayRule(9*60, 17*60)},
		Buffers: &models.BufferSettings{OrganizerID: "org-1", Timezone: "UTC"},
	}
}

func mondayQuery(durationMinutes int) models.SlotQuery {
	return models.SlotQuery{
		OrganizerID:     "org-1",
		EventTypeSlug:   "intro-call",
		StartDate:       mondayStr,
		EndDate:         mondayStr,
		DurationMinutes: durationMinutes,
	}
}

func TestCalculateSlotsBasicWorkday(t *testing.T) {
	engine, _ := newTestEngine(workdayData())

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.TotalSlots != 16 || len(response.Slots) != 16 {
		t.Fatalf("9-17 workday at 30min should yield 16 slots, got %d", response.TotalSlots)
	}
	if !response.Slots[0].Start.Equal(monday.Add(9 * time.Hour)) {
		t.Fatalf("first slot starts %v", response.Slots[0].Start)
	}
	last := response.Slots[15]
	if !last.Start.Equal(monday.Add(16*time.Hour+30*time.Minute)) || !last.End.Equal(monday.Add(17*time.Hour)) {
		t.Fatalf("last slot %v-%v", last.Start, last.End)
	}
	if len(response.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", response.Warnings)
	}
	if response.CacheHit {
		t.Fatal("uncached engine must not report cache hits")
	}
}

func TestCalculateSlotsUnavailableOverride(t *testing.T) {
	data := workdayData()
	data.Overrides = []models.DateOverride{{
		ID: "ov-1", OrganizerID: "org-1", Date: mondayStr, IsAvailable: false, Reason: "vacation",
	}}
	engine, _ := newTestEngine(data)

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.TotalSlots != 0 {
		t.Fatalf("blocked date should yield no slots, got %d", response.TotalSlots)
	}
	// An explicitly blocked date is intentional, not degenerate.
	for _, w := range response.Warnings {
		if strings.Contains(w, "no availability configured") {
			t.Fatalf("override-emptied range must not warn: %v", response.Warnings)
		}
	}
}

func TestCalculateSlotsRecurringBlockSubtracted(t *testing.T) {
	data := workdayData()
	data.RecurringBlocks = []models.RecurringBlockedTime{{
		ID:   "rb-1",
		Name: "weekly sync",
		Recurrence: models.RecurrenceSpec{
			Frequency: "weekly",
			Interval:  1,
			ByWeekday: []int{1},
		},
		Start:           12 * 60,
		DurationMinutes: 60,
		StartDate:       mondayStr,
		Timezone:        "UTC",
		Active:          true,
	}}
	engine, _ := newTestEngine(data)

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.TotalSlots != 14 {
		t.Fatalf("expected 14 slots around the block, got %d", response.TotalSlots)
	}
	block := Interval{Start: monday.Add(12 * time.Hour), End: monday.Add(13 * time.Hour)}
	for _, slot := range response.Slots {
		if (Interval{Start: slot.Start, End: slot.End}).Overlaps(block) {
			t.Fatalf("slot %v-%v overlaps the recurring block", slot.Start, slot.End)
		}
	}
}

func TestCalculateSlotsBuffersShrinkWindows(t *testing.T) {
	data := workdayData()
	data.Buffers = &models.BufferSettings{
		OrganizerID:  "org-1",
		BufferBefore: 15,
		BufferAfter:  15,
		Timezone:     "UTC",
	}
	engine, _ := newTestEngine(data)

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 09:15-16:45 leaves 7.5h, so 15 slots.
	if response.TotalSlots != 15 {
		t.Fatalf("expected 15 slots inside buffers, got %d", response.TotalSlots)
	}
	earliest := monday.Add(9*time.Hour + 15*time.Minute)
	latest := monday.Add(16*time.Hour + 45*time.Minute)
	for _, slot := range response.Slots {
		if slot.Start.Before(earliest) || slot.End.After(latest) {
			t.Fatalf("slot %v-%v escapes the buffered window", slot.Start, slot.End)
		}
	}
}

func TestCalculateSlotsGapWidensBookings(t *testing.T) {
	data := workdayData()
	data.Buffers = &models.BufferSettings{OrganizerID: "org-1", MinimumGap: 30, Timezone: "UTC"}
	data.Bookings = []models.Booking{{
		ID:          "b-1",
		OrganizerID: "org-1",
		Start:       monday.Add(12 * time.Hour),
		End:         monday.Add(13 * time.Hour),
		Status:      "confirmed",
	}}
	engine, _ := newTestEngine(data)

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The booking plus 30min gap blocks 11:30-13:30.
	widened := Interval{Start: monday.Add(11*time.Hour + 30*time.Minute), End: monday.Add(13*time.Hour + 30*time.Minute)}
	for _, slot := range response.Slots {
		if (Interval{Start: slot.Start, End: slot.End}).Overlaps(widened) {
			t.Fatalf("slot %v-%v violates the minimum gap", slot.Start, slot.End)
		}
	}
	if response.TotalSlots != 12 {
		t.Fatalf("expected 12 slots outside the gap-widened booking, got %d", response.TotalSlots)
	}
}

func TestCalculateSlotsMissingBuffersWarns(t *testing.T) {
	data := workdayData()
	data.Buffers = nil
	engine, _ := newTestEngine(data)

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.TotalSlots != 16 {
		t.Fatalf("missing buffers default to zero, got %d slots", response.TotalSlots)
	}
	found := false
	for _, w := range response.Warnings {
		if strings.Contains(w, "buffer settings") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-buffers warning, got %v", response.Warnings)
	}
}

func TestCalculateSlotsNoRulesWarns(t *testing.T) {
	engine, _ := newTestEngine(&models.AvailabilityData{
		Buffers: &models.BufferSettings{OrganizerID: "org-1", Timezone: "UTC"},
	})

	response, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.TotalSlots != 0 {
		t.Fatalf("expected no slots, got %d", response.TotalSlots)
	}
	found := false
	for _, w := range response.Warnings {
		if strings.Contains(w, "no availability configured") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a no-availability warning, got %v", response.Warnings)
	}
}

func TestCalculateSlotsIdempotentViaCache(t *testing.T) {
	repo := &fakeRepo{data: workdayData()}
	engine := &DefaultAvailabilityEngine{
		Repo:  repo,
		Cache: NewResultCache(nil, time.Minute),
	}

	first, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.CalculateSlots(context.Background(), mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.CacheHit {
		t.Fatal("first call must be a miss")
	}
	if !second.CacheHit || second.ComputationTimeMs != 0 {
		t.Fatalf("second call must be a zero-cost hit, got hit=%v time=%d", second.CacheHit, second.ComputationTimeMs)
	}
	if repo.calls.Load() != 1 {
		t.Fatalf("cached call must not refetch records, got %d fetches", repo.calls.Load())
	}
	if second.TotalSlots != first.TotalSlots || len(second.Slots) != len(first.Slots) {
		t.Fatal("hit must return the identical result")
	}
	for i := range first.Slots {
		if !first.Slots[i].Start.Equal(second.Slots[i].Start) || !first.Slots[i].End.Equal(second.Slots[i].End) {
			t.Fatalf("slot %d diverged between computation and hit", i)
		}
	}
}

func TestCalculateSlotsInvalidateForcesRecompute(t *testing.T) {
	repo := &fakeRepo{data: workdayData()}
	engine := &DefaultAvailabilityEngine{
		Repo:  repo,
		Cache: NewResultCache(nil, time.Minute),
	}

	ctx := context.Background()
	if _, err := engine.CalculateSlots(ctx, mondayQuery(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Invalidate(ctx, "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response, err := engine.CalculateSlots(ctx, mondayQuery(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.CacheHit {
		t.Fatal("invalidated organizer must be recomputed")
	}
	if repo.calls.Load() != 2 {
		t.Fatalf("expected 2 fetches after invalidation, got %d", repo.calls.Load())
	}
}

func TestCalculateSlotsValidation(t *testing.T) {
	engine, _ := newTestEngine(workdayData())
	ctx := context.Background()

	cases := []struct {
		name  string
		query models.SlotQuery
	}{
		{"missing organizer", func() models.SlotQuery {
			q := mondayQuery(30)
			q.OrganizerID = ""
			return q
		}()},
		{"zero duration", mondayQuery(0)},
		{"negative attendee count", func() models.SlotQuery {
			q := mondayQuery(30)
			q.AttendeeCount = -1
			return q
		}()},
		{"malformed start date", func() models.SlotQuery {
			q := mondayQuery(30)
			q.StartDate = "06/02/2025"
			return q
		}()},
		{"end before start", func() models.SlotQuery {
			q := mondayQuery(30)
			q.EndDate = "2025-06-01"
			return q
		}()},
		{"unknown invitee timezone", func() models.SlotQuery {
			q := mondayQuery(30)
			q.InviteeTimezones = []string{"Moon/Tranquility"}
			return q
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CalculateSlots(ctx, tc.query)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("range too large", func(t *testing.T) {
		q := mondayQuery(30)
		q.EndDate = "2025-12-31"
		_, err := engine.CalculateSlots(ctx, q)
		var rangeErr *RangeTooLargeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected RangeTooLargeError, got %v", err)
		}
		if rangeErr.MaxDays != defaultMaxRangeDays {
			t.Fatalf("unexpected cap %d", rangeErr.MaxDays)
		}
	})
}

func TestCalculateSlotsCancelledContext(t *testing.T) {
	engine, _ := newTestEngine(workdayData())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ComputeFromData(ctx, mondayQuery(30), workdayData())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngineStats(t *testing.T) {
	repo := &fakeRepo{data: workdayData()}
	engine := &DefaultAvailabilityEngine{
		Repo:  repo,
		Cache: NewResultCache(nil, time.Minute),
	}

	ctx := context.Background()
	if _, err := engine.CalculateSlots(ctx, mondayQuery(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := engine.CalculateSlots(ctx, mondayQuery(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := engine.Stats()
	if stats.Computations != 1 {
		t.Fatalf("expected 1 computation, got %d", stats.Computations)
	}
	if stats.CacheHits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", stats.CacheHits)
	}
	if stats.RuleCount != 1 {
		t.Fatalf("expected rule gauge 1, got %d", stats.RuleCount)
	}
}
