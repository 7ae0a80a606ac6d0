package availability

import "fmt"

// ValidationError rejects a request before any computation runs: malformed
// recurrence specs, start >= end, invalid timezone identifiers.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &ValidationError{
		Code:    "validationError",
		Message: msg,
	}
}

// RangeTooLargeError indicates the query date range exceeds the configured
// bound on recurrence-expansion cost.
type RangeTooLargeError struct {
	Days    int
	MaxDays int
}

func (e *RangeTooLargeError) Error() string {
	return fmt.Sprintf("rangeTooLarge: requested %d days exceeds the %d day limit", e.Days, e.MaxDays)
}

// ConfigurationMissingError indicates the organizer has no buffer settings
// record. The engine falls back to zero buffers and records a warning, so
// this surfaces in logs rather than as a request failure.
type ConfigurationMissingError struct {
	OrganizerID string
	What        string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("configurationMissing: organizer %s has no %s", e.OrganizerID, e.What)
}
