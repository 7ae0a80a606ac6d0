package availability

import (
	"time"

	"github.com/hazqeelknight/events/models"
)

// HourBand is the acceptable local-hour range used for reasonableness checks.
type HourBand struct {
	StartHour int
	EndHour   int
}

// DefaultHourBand is the culturally acceptable default of 07:00-21:00 local.
var DefaultHourBand = HourBand{StartHour: 7, EndHour: 21}

// contains reports whether the slot fits inside the band in local time.
// Slots crossing a local midnight are never reasonable.
func (b HourBand) contains(localStart, localEnd time.Time) bool {
	startMin := localStart.Hour()*60 + localStart.Minute()
	endMin := localEnd.Hour()*60 + localEnd.Minute()
	if endMin == 0 {
		endMin = minutesPerDay
	} else if localEnd.YearDay() != localStart.YearDay() || localEnd.Year() != localStart.Year() {
		return false
	}
	return startMin >= b.StartHour*60 && endMin <= b.EndHour*60
}

// GenerateSlots slices buffered windows into back-to-back slots of exactly
// the event duration, renders each slot into every invitee timezone, and
// annotates reasonableness, fairness and remaining capacity.
//
// Slicing starts at each window's start instant; a trailing remainder shorter
// than the duration is discarded rather than emitted as a short slot.
func GenerateSlots(windows []Interval, query models.SlotQuery, band HourBand) ([]models.AvailableSlot, error) {
	duration := time.Duration(query.DurationMinutes) * time.Minute

	timezones := query.InviteeTimezones
	if len(timezones) == 0 {
		timezones = []string{"UTC"}
	}
	locations := make([]*time.Location, len(timezones))
	for i, name := range timezones {
		loc, err := loadLocation(name)
		if err != nil {
			return nil, err
		}
		locations[i] = loc
	}
	multi := len(timezones) > 1

	slots := make([]models.AvailableSlot, 0)
	for _, w := range windows {
		for start := w.Start; !start.Add(duration).After(w.End); start = start.Add(duration) {
			end := start.Add(duration)
			slot := models.AvailableSlot{
				Start:           start,
				End:             end,
				DurationMinutes: query.DurationMinutes,
			}

			if multi {
				slot.InviteeTimes = make(map[string]models.InviteeTime, len(timezones))
			}
			for i, name := range timezones {
				localStart := start.In(locations[i])
				localEnd := end.In(locations[i])
				reasonable := band.contains(localStart, localEnd)
				if multi {
					slot.InviteeTimes[name] = models.InviteeTime{
						LocalStartTime: localStart.Format(time.RFC3339),
						LocalEndTime:   localEnd.Format(time.RFC3339),
						IsReasonable:   reasonable,
					}
				} else {
					slot.LocalStartTime = localStart.Format(time.RFC3339)
					slot.LocalEndTime = localEnd.Format(time.RFC3339)
					r := reasonable
					slot.IsReasonable = &r
				}
			}

			slots = append(slots, slot)
		}
	}
	return slots, nil
}
