package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/hazqeelknight/events/models"
)

// 2025-06-02 is a Monday.
var (
	monday    = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mondayStr = "2025-06-02"
)

func mondayRule(start, end int) models.AvailabilityRule {
	return models.AvailabilityRule{
		ID:          "rule-1",
		OrganizerID: "org-1",
		DayOfWeek:   1,
		Start:       start,
		End:         end,
		Timezone:    "UTC",
		Active:      true,
	}
}

func TestBuildWindowsUnionsOverlappingRules(t *testing.T) {
	rules := []models.AvailabilityRule{
		mondayRule(9*60, 12*60),
		{ID: "rule-2", OrganizerID: "org-1", DayOfWeek: 1, Start: 11 * 60, End: 15 * 60, Timezone: "UTC", Active: true},
	}

	windows, err := BuildWindows(monday, monday, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("overlapping rules must merge, got %d windows", len(windows))
	}
	if !windows[0].Start.Equal(monday.Add(9*time.Hour)) || !windows[0].End.Equal(monday.Add(15*time.Hour)) {
		t.Fatalf("unexpected merged window %v", windows[0])
	}
	if windows[0].Duration() > 24*time.Hour {
		t.Fatalf("window exceeds 24 hours: %s", windows[0].Duration())
	}
}

func TestBuildWindowsInactiveRuleIgnored(t *testing.T) {
	rule := mondayRule(9*60, 17*60)
	rule.Active = false

	windows, err := BuildWindows(monday, monday, []models.AvailabilityRule{rule}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("inactive rule produced windows: %v", windows)
	}
}

func TestBuildWindowsEmptyDayIsValid(t *testing.T) {
	// No rule matches a Tuesday; that is "organizer unavailable", not an error.
	tuesday := monday.AddDate(0, 0, 1)
	windows, err := BuildWindows(tuesday, tuesday, []models.AvailabilityRule{mondayRule(9*60, 17*60)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 0 {
		t.Fatalf("expected no windows, got %v", windows)
	}
}

func TestBuildWindowsOverridePrecedence(t *testing.T) {
	rules := []models.AvailabilityRule{mondayRule(9*60, 17*60)}

	t.Run("unavailable blocks the whole date", func(t *testing.T) {
		overrides := []models.DateOverride{{
			ID: "ov-1", OrganizerID: "org-1", Date: mondayStr, IsAvailable: false, Reason: "holiday",
		}}
		windows, err := BuildWindows(monday, monday, rules, overrides)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(windows) != 0 {
			t.Fatalf("override should block the date, got %v", windows)
		}
	})

	t.Run("available with times replaces rule windows", func(t *testing.T) {
		start, end := 10*60, 12*60
		overrides := []models.DateOverride{{
			ID: "ov-2", OrganizerID: "org-1", Date: mondayStr,
			Start: &start, End: &end, Timezone: "UTC", IsAvailable: true,
		}}
		windows, err := BuildWindows(monday, monday, rules, overrides)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(windows) != 1 {
			t.Fatalf("expected exactly the override window, got %v", windows)
		}
		if !windows[0].Start.Equal(monday.Add(10*time.Hour)) || !windows[0].End.Equal(monday.Add(12*time.Hour)) {
			t.Fatalf("override window not applied: %v", windows[0])
		}
	})

	t.Run("available without times opens the whole date", func(t *testing.T) {
		overrides := []models.DateOverride{{
			ID: "ov-3", OrganizerID: "org-1", Date: mondayStr, Timezone: "UTC", IsAvailable: true,
		}}
		windows, err := BuildWindows(monday, monday, rules, overrides)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(windows) != 1 {
			t.Fatalf("expected one full-day window, got %v", windows)
		}
		if windows[0].Duration() != 24*time.Hour {
			t.Fatalf("expected 24h window, got %s", windows[0].Duration())
		}
	})
}

func TestBuildWindowsRuleTimezoneResolved(t *testing.T) {
	rule := mondayRule(9*60, 17*60)
	rule.Timezone = "America/New_York"

	windows, err := BuildWindows(monday, monday, []models.AvailabilityRule{rule}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	// EDT on 2025-06-02: 09:00 local is 13:00 UTC.
	if windows[0].Start.UTC().Hour() != 13 {
		t.Fatalf("rule timezone not resolved: window starts %s", windows[0].Start.UTC())
	}
}

func TestBuildWindowsRejectsInvalidRule(t *testing.T) {
	cases := []struct {
		name string
		rule models.AvailabilityRule
	}{
		{"start after end", mondayRule(17*60, 9*60)},
		{"bad timezone", func() models.AvailabilityRule {
			r := mondayRule(9*60, 17*60)
			r.Timezone = "Mars/Olympus"
			return r
		}()},
		{"weekday out of range", func() models.AvailabilityRule {
			r := mondayRule(9*60, 17*60)
			r.DayOfWeek = 9
			return r
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildWindows(monday, monday, []models.AvailabilityRule{tc.rule}, nil)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
