package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/availability"
	"github.com/carelane/hms/services/clinic-service/internal/model"
)

var (
	ErrDateNotOffered    = errors.New("date is not the next bookable occurrence of that weekday")
	ErrNoSchedule        = errors.New("doctor has no enabled schedule on that weekday")
	ErrSlotNotOffered    = errors.New("start_time/end_time is not an offered slot")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Policy decides whether a submitted booking matches what the slot
// generator would have offered for the doctor at the booking moment.
type Policy struct {
	// Strict enables re-deriving the slot server side. When off, submitted
	// values are persisted as given.
	Strict   bool
	Location *time.Location
	Now      func() time.Time
}

func (p Policy) Today() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// CheckSlot validates (date, start, end) against the doctor's entries for the
// weekday of date.
func (p Policy) CheckSlot(entries []model.ScheduleEntry, date model.Date, start, end model.TimeOfDay) error {
	if !p.Strict {
		return nil
	}
	weekday := date.Weekday()
	if want := availability.NextDate(weekday, p.Today()); !date.Equal(want) {
		return fmt.Errorf("%w: %s for %s, got %s", ErrDateNotOffered, want, weekday, date)
	}

	enabled := 0
	for _, e := range entries {
		if e.DayOfWeek != weekday || !e.Enabled {
			continue
		}
		enabled++
		if availability.Offered(availability.Generate(e), start, end) {
			return nil
		}
	}
	if enabled == 0 {
		return ErrNoSchedule
	}
	return fmt.Errorf("%w: %s-%s", ErrSlotNotOffered, start, end)
}

// Transition checks a status change. Appointments only leave "scheduled";
// repeating the current status is a no-op.
func Transition(from, to model.AppointmentStatus) (changed bool, err error) {
	if !to.Valid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == to {
		return false, nil
	}
	if from != model.StatusScheduled || to == model.StatusScheduled {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return true, nil
}
