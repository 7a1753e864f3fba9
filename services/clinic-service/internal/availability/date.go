package availability

import (
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/model"
)

// NextDate is the first date strictly after today that falls on day. Asking
// for today's weekday gives the same weekday next week; today is never offered.
func NextDate(day model.Weekday, today time.Time) model.Date {
	delta := (day.Index() - int(today.Weekday())) % 7
	if delta <= 0 {
		delta += 7
	}
	return model.DateOf(today).AddDays(delta)
}

// Plan is the bookable picture of one schedule entry for its next occurrence.
type Plan struct {
	ScheduleID string        `json:"schedule_id"`
	DoctorID   string        `json:"doctor_id"`
	DayOfWeek  model.Weekday `json:"day_of_week"`
	Date       model.Date    `json:"date"`
	Slots      []Slot        `json:"slots"`
}

func PlanFor(entry model.ScheduleEntry, today time.Time) Plan {
	slots := Generate(entry)
	if slots == nil {
		slots = []Slot{}
	}
	return Plan{
		ScheduleID: entry.ID,
		DoctorID:   entry.DoctorID,
		DayOfWeek:  entry.DayOfWeek,
		Date:       NextDate(entry.DayOfWeek, today),
		Slots:      slots,
	}
}
