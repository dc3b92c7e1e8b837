// AngelaMos | 2026
// reminder.go

package plant

import (
	"time"
)

const (
	ReminderWatering    = "riego"
	ReminderFertilizing = "fertilizacion"

	wateringIcon    = "💧"
	fertilizingIcon = "🌱"

	ReminderTimeLayout = "2006-01-02 15:04"
)

type Reminder struct {
	Plant     string  `json:"planta"`
	Type      string  `json:"tipo"`
	Frequency *string `json:"frecuencia"`
	Next      string  `json:"proximo"`
	Icon      string  `json:"icono"`
}

// NextWatering returns when a plant with the given watering frequency is
// due next. Unknown or empty frequencies fall back to thirty days.
func NextWatering(frequency string, now time.Time) time.Time {
	switch frequency {
	case WateringDaily:
		return now.AddDate(0, 0, 1)
	case WateringEvery2To3:
		return now.AddDate(0, 0, 2)
	case WateringWeekly:
		return now.AddDate(0, 0, 7)
	case WateringEvery15:
		return now.AddDate(0, 0, 15)
	default:
		return now.AddDate(0, 0, 30)
	}
}

// NextFertilizing returns the first day of the month after now, keeping the
// time of day. December rolls into January of the next year.
func NextFertilizing(now time.Time) time.Time {
	return time.Date(
		now.Year(),
		now.Month()+1,
		1,
		now.Hour(),
		now.Minute(),
		now.Second(),
		now.Nanosecond(),
		now.Location(),
	)
}

// BuildReminders emits a watering and a fertilizing reminder per plant, in
// the order the plants are given.
func BuildReminders(plants []Plant, now time.Time) []Reminder {
	reminders := make([]Reminder, 0, 2*len(plants))
	fertilizing := NextFertilizing(now).Format(ReminderTimeLayout)

	for _, p := range plants {
		var frequency string
		if p.Watering != nil {
			frequency = *p.Watering
		}

		reminders = append(reminders,
			Reminder{
				Plant:     p.Name,
				Type:      ReminderWatering,
				Frequency: p.Watering,
				Next:      NextWatering(frequency, now).Format(ReminderTimeLayout),
				Icon:      wateringIcon,
			},
			Reminder{
				Plant:     p.Name,
				Type:      ReminderFertilizing,
				Frequency: ptr(WateringMonthly),
				Next:      fertilizing,
				Icon:      fertilizingIcon,
			},
		)
	}

	return reminders
}
