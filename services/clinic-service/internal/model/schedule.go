package model

import (
	"errors"
	"time"
)

// ScheduleEntry is one doctor's recurring window for one weekday, with an
// optional break inside it.
type ScheduleEntry struct {
	ID         string     `json:"id"`
	DoctorID   string     `json:"doctor_id"`
	DayOfWeek  Weekday    `json:"day_of_week"`
	StartTime  TimeOfDay  `json:"start_time"`
	EndTime    TimeOfDay  `json:"end_time"`
	BreakStart *TimeOfDay `json:"break_start"`
	BreakEnd   *TimeOfDay `json:"break_end"`
	Enabled    Flag       `json:"is_enable"`
	CreatedOn  time.Time  `json:"created_on"`
}

var (
	ErrWindowOrder  = errors.New("start_time must be before end_time")
	ErrBreakPartial = errors.New("break_start and break_end must be given together")
	ErrBreakBounds  = errors.New("break must satisfy start_time <= break_start < break_end <= end_time")
)

func (e ScheduleEntry) HasBreak() bool {
	return e.BreakStart != nil && e.BreakEnd != nil
}

func (e ScheduleEntry) Validate() error {
	if !e.DayOfWeek.Valid() {
		_, err := ParseWeekday(string(e.DayOfWeek))
		return err
	}
	if e.StartTime >= e.EndTime {
		return ErrWindowOrder
	}
	if (e.BreakStart == nil) != (e.BreakEnd == nil) {
		return ErrBreakPartial
	}
	if e.HasBreak() {
		bs, be := *e.BreakStart, *e.BreakEnd
		if bs < e.StartTime || bs >= be || be > e.EndTime {
			return ErrBreakBounds
		}
	}
	return nil
}
