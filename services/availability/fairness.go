package availability

import "github.com/hazqeelknight/events/models"

// ScoreFairness annotates each slot with its fairness score and remaining
// capacity. Fairness activates only in multi-invitee mode: the score is the
// fraction of invitee timezones for which the slot is reasonable (0.0-1.0).
// Slots are annotated, never filtered, so callers can sort or rank.
//
// AvailableSpots is populated only when the caller supplied a capacity
// snapshot; the engine never inspects group bookings itself.
func ScoreFairness(slots []models.AvailableSlot, query models.SlotQuery) []models.AvailableSlot {
	multi := len(query.InviteeTimezones) > 1
	for i := range slots {
		if multi && len(slots[i].InviteeTimes) > 0 {
			reasonable := 0
			for _, it := range slots[i].InviteeTimes {
				if it.IsReasonable {
					reasonable++
				}
			}
			score := float64(reasonable) / float64(len(slots[i].InviteeTimes))
			slots[i].FairnessScore = &score
		}
		if query.MaxAttendees != nil {
			spots := *query.MaxAttendees
			slots[i].AvailableSpots = &spots
		}
	}
	return slots
}
