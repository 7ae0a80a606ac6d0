package models

import "time"

// SlotQuery carries the parameters of one calculated-slots request.
type SlotQuery struct {
	OrganizerID      string   `json:"organizer_id"`
	EventTypeSlug    string   `json:"event_type_slug"`
	StartDate        string   `json:"start_date"` // "2006-01-02"
	EndDate          string   `json:"end_date"`
	DurationMinutes  int      `json:"duration_minutes"`
	InviteeTimezones []string `json:"invitee_timezones,omitempty"`
	AttendeeCount    int      `json:"attendee_count,omitempty"`

	// MaxAttendees is the capacity ceiling from the event-type configuration,
	// supplied as an external snapshot for group events. When nil, slots omit
	// available_spots entirely.
	MaxAttendees *int `json:"max_attendees,omitempty"`
}

// InviteeTime is a slot rendered into one invitee timezone.
type InviteeTime struct {
	LocalStartTime string `json:"local_start_time"` // e.g., "2026-03-02T09:00:00+01:00"
	LocalEndTime   string `json:"local_end_time"`
	IsReasonable   bool   `json:"is_reasonable"`
}

// AvailableSlot is one bookable slot. Computed, never persisted.
// LocalStartTime/LocalEndTime reflect the single-timezone convenience case;
// InviteeTimes carries the per-timezone map when multiple are requested.
type AvailableSlot struct {
	Start           time.Time              `json:"start_time"`
	End             time.Time              `json:"end_time"`
	DurationMinutes int                    `json:"duration_minutes"`
	LocalStartTime  string                 `json:"local_start_time,omitempty"`
	LocalEndTime    string                 `json:"local_end_time,omitempty"`
	IsReasonable    *bool                  `json:"is_reasonable,omitempty"`
	InviteeTimes    map[string]InviteeTime `json:"invitee_times,omitempty"`
	FairnessScore   *float64               `json:"fairness_score,omitempty"`
	AvailableSpots  *int                   `json:"available_spots,omitempty"`
}

// CalculatedSlotsResponse is the engine's output envelope.
type CalculatedSlotsResponse struct {
	OrganizerID       string          `json:"organizer_id"`
	EventTypeSlug     string          `json:"event_type_slug"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	InviteeTimezones  []string        `json:"invitee_timezones"`
	AttendeeCount     int             `json:"attendee_count,omitempty"`
	Slots             []AvailableSlot `json:"slots"`
	TotalSlots        int             `json:"total_slots"`
	CacheHit          bool            `json:"cache_hit"`
	ComputationTimeMs int64           `json:"computation_time_ms"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// EngineStats is the read-only observability snapshot exposed by the engine.
type EngineStats struct {
	RuleCount            int64   `json:"rule_count"`
	OverrideCount        int64   `json:"override_count"`
	BlockCount           int64   `json:"block_count"`
	Computations         int64   `json:"computations"`
	CacheHits            int64   `json:"cache_hits"`
	CacheMisses          int64   `json:"cache_misses"`
	CacheHitRate         float64 `json:"cache_hit_rate"`
	AvgComputationTimeMs float64 `json:"avg_computation_time_ms"`
}
