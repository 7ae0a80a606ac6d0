package availability

import (
	"context"

	availabilityRepo "github.com/hazqeelknight/events/database/repository/availability"
	"github.com/hazqeelknight/events/models"
)

// AvailabilityEngine is the boundary contract exposed to the surrounding
// CRUD layer: slot computation, proactive cache invalidation, and a
// read-only stats accessor.
type AvailabilityEngine interface {
	CalculateSlots(ctx context.Context, query models.SlotQuery) (*models.CalculatedSlotsResponse, error)
	Invalidate(ctx context.Context, organizerID string) error
	Stats() models.EngineStats
}

// DefaultAvailabilityEngine is our production availability engine. Stateless
// per call except for the shared result cache; every pipeline stage consumes
// and produces immutable values, so concurrent requests need no locking
// outside the cache.
type DefaultAvailabilityEngine struct {
	Repo  availabilityRepo.AvailabilityRepository
	Cache *ResultCache

	// MaxRangeDays caps the query range to bound recurrence-expansion cost.
	// Zero means the 90-day default.
	MaxRangeDays int
	// ReasonableHours is the local-hour band for reasonableness checks.
	// The zero value means the 07:00-21:00 default.
	ReasonableHours HourBand
	// MaxOccurrences bounds a single recurrence expansion.
	MaxOccurrences int

	stats engineStats
}
