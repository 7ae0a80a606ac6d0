package models

import "time"

// DateLayout is the wire format for calendar dates across the engine.
const DateLayout = "2006-01-02"

// AvailabilityRule is a weekly recurring availability window for an organizer.
// Start and End are minutes from midnight (e.g., 540 for 9:00 AM) resolved in
// the rule's own timezone. Multiple rules may exist for the same weekday and
// are unioned, not assumed disjoint.
type AvailabilityRule struct {
	ID          string `bson:"id" json:"id"`
	OrganizerID string `bson:"organizer_id" json:"organizer_id"`
	DayOfWeek   int    `bson:"day_of_week" json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	Start       int    `bson:"start" json:"start"`             // minutes from midnight
	End         int    `bson:"end" json:"end"`                 // minutes from midnight, exclusive
	Timezone    string `bson:"timezone" json:"timezone"`       // IANA zone name
	Active      bool   `bson:"active" json:"active"`
}

// DateOverride replaces the rule-derived windows for one calendar date.
// IsAvailable=false blocks the whole date; true with Start/End present yields
// exactly that window; true with both absent makes the whole date available.
type DateOverride struct {
	ID          string `bson:"id" json:"id"`
	OrganizerID string `bson:"organizer_id" json:"organizer_id"`
	Date        string `bson:"date" json:"date"` // e.g., "2026-03-02"
	Start       *int   `bson:"start,omitempty" json:"start,omitempty"`
	End         *int   `bson:"end,omitempty" json:"end,omitempty"`
	Timezone    string `bson:"timezone" json:"timezone"`
	IsAvailable bool   `bson:"is_available" json:"is_available"`
	Reason      string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// BlockedTime is a one-off blocked interval in absolute time, optionally
// repeated via an attached recurrence specification.
type BlockedTime struct {
	ID          string          `bson:"id" json:"id"`
	OrganizerID string          `bson:"organizer_id" json:"organizer_id"`
	Start       time.Time       `bson:"start" json:"start"`
	End         time.Time       `bson:"end" json:"end"`
	Recurrence  *RecurrenceSpec `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	Reason      string          `bson:"reason,omitempty" json:"reason,omitempty"`
}

// RecurringBlockedTime is a named recurring block series (e.g. "weekly team
// sync"), distinct from BlockedTime so the series can be managed on its own.
type RecurringBlockedTime struct {
	ID              string         `bson:"id" json:"id"`
	OrganizerID     string         `bson:"organizer_id" json:"organizer_id"`
	Name            string         `bson:"name" json:"name"`
	Recurrence      RecurrenceSpec `bson:"recurrence" json:"recurrence"`
	Start           int            `bson:"start" json:"start"` // minutes from midnight, series-local
	DurationMinutes int            `bson:"duration_minutes" json:"duration_minutes"`
	StartDate       string         `bson:"start_date" json:"start_date"`
	EndDate         *string        `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Timezone        string         `bson:"timezone" json:"timezone"`
	Active          bool           `bson:"active" json:"active"`
}

// BufferSettings is the per-organizer buffer and gap policy. Singleton.
type BufferSettings struct {
	OrganizerID  string `bson:"organizer_id" json:"organizer_id"`
	BufferBefore int    `bson:"default_buffer_before" json:"default_buffer_before"` // minutes
	BufferAfter  int    `bson:"default_buffer_after" json:"default_buffer_after"`   // minutes
	MinimumGap   int    `bson:"minimum_gap_between_meetings" json:"minimum_gap_between_meetings"`
	Timezone     string `bson:"timezone" json:"timezone"`
}

// Booking is a confirmed meeting. The engine only ever sees bookings as a
// blocking-interval source; it never mutates them.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	OrganizerID   string    `bson:"organizer_id" json:"organizer_id"`
	Start         time.Time `bson:"start" json:"start"`
	End           time.Time `bson:"end" json:"end"`
	AttendeeCount int       `bson:"attendee_count" json:"attendee_count"`
	Status        string    `bson:"status" json:"status"` // only "confirmed" bookings block
}

// RecurrenceSpec describes how an interval repeats. Malformed specs are
// rejected before expansion, never treated as "no recurrence".
type RecurrenceSpec struct {
	Frequency string     `bson:"frequency" json:"frequency"` // "daily", "weekly", "monthly"
	Interval  int        `bson:"interval" json:"interval"`   // every N periods, >= 1
	ByWeekday []int      `bson:"by_weekday,omitempty" json:"by_weekday,omitempty"`
	Count     *int       `bson:"count,omitempty" json:"count,omitempty"`
	Until     *time.Time `bson:"until,omitempty" json:"until,omitempty"`
}

// AvailabilityData bundles every record the engine reads for one organizer.
// Supplied in bulk per call; read-only inside the pipeline.
type AvailabilityData struct {
	Rules           []AvailabilityRule
	Overrides       []DateOverride
	BlockedTimes    []BlockedTime
	RecurringBlocks []RecurringBlockedTime
	Buffers         *BufferSettings
	Bookings        []Booking
}
