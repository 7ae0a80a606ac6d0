package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeAvailabilityInvalidate = "availability:invalidate"

// InvalidatePayload identifies whose cached availability must be dropped.
type InvalidatePayload struct {
	OrganizerID string `json:"organizer_id"`
	Reason      string `json:"reason,omitempty"` // e.g. "rule_changed", "override_changed"
}

// NewInvalidateTask builds the task the management layer enqueues whenever a
// rule, override, block or buffer setting changes.
func NewInvalidateTask(payload InvalidatePayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAvailabilityInvalidate, b), nil
}
