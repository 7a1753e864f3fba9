package booking

import (
	"testing"
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

// Wednesday 2026-03-04, 10:00 UTC.
func wednesdayPolicy(strict bool) Policy {
	return Policy{
		Strict:   strict,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) },
	}
}

func fridayMorning(t *testing.T) []model.ScheduleEntry {
	bs, be := tod(t, "10:00"), tod(t, "10:30")
	return []model.ScheduleEntry{{
		ID: "s1", DoctorID: "d1", DayOfWeek: model.Friday,
		StartTime: tod(t, "09:00"), EndTime: tod(t, "12:00"),
		BreakStart: &bs, BreakEnd: &be, Enabled: true,
	}}
}

func TestCheckSlot_AcceptsGeneratedSlot(t *testing.T) {
	p := wednesdayPolicy(true)
	assert.NoError(t, p.CheckSlot(fridayMorning(t), date(t, "2026-03-06"), tod(t, "09:30"), tod(t, "10:00")))
}

func TestCheckSlot_RejectsSlotInBreakOrOffGrid(t *testing.T) {
	p := wednesdayPolicy(true)
	err := p.CheckSlot(fridayMorning(t), date(t, "2026-03-06"), tod(t, "10:00"), tod(t, "10:30"))
	assert.ErrorIs(t, err, ErrSlotNotOffered)

	err = p.CheckSlot(fridayMorning(t), date(t, "2026-03-06"), tod(t, "09:15"), tod(t, "09:45"))
	assert.ErrorIs(t, err, ErrSlotNotOffered)
}

func TestCheckSlot_RejectsWrongDate(t *testing.T) {
	p := wednesdayPolicy(true)
	// A Friday, but the one after next.
	err := p.CheckSlot(fridayMorning(t), date(t, "2026-03-13"), tod(t, "09:00"), tod(t, "09:30"))
	assert.ErrorIs(t, err, ErrDateNotOffered)

	// Today is never bookable.
	err = p.CheckSlot(fridayMorning(t), date(t, "2026-03-04"), tod(t, "09:00"), tod(t, "09:30"))
	assert.ErrorIs(t, err, ErrDateNotOffered)
}

func TestCheckSlot_NoEnabledSchedule(t *testing.T) {
	p := wednesdayPolicy(true)
	entries := fridayMorning(t)
	entries[0].Enabled = false
	err := p.CheckSlot(entries, date(t, "2026-03-06"), tod(t, "09:00"), tod(t, "09:30"))
	assert.ErrorIs(t, err, ErrNoSchedule)

	err = p.CheckSlot(nil, date(t, "2026-03-09"), tod(t, "09:00"), tod(t, "09:30"))
	assert.ErrorIs(t, err, ErrNoSchedule)
}

func TestCheckSlot_LenientAcceptsAnything(t *testing.T) {
	p := wednesdayPolicy(false)
	assert.NoError(t, p.CheckSlot(nil, date(t, "2030-01-01"), tod(t, "07:13"), tod(t, "07:14")))
}

func TestCheckSlot_UsesClinicTimezone(t *testing.T) {
	// 2026-03-04 22:00 UTC is already Thursday in UTC+5, so Friday is the next day.
	p := Policy{
		Strict:   true,
		Location: time.FixedZone("UTC+5", 5*3600),
		Now:      func() time.Time { return time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC) },
	}
	assert.NoError(t, p.CheckSlot(fridayMorning(t), date(t, "2026-03-06"), tod(t, "09:00"), tod(t, "09:30")))
	assert.Equal(t, time.Thursday, p.Today().Weekday())
}

func TestTransition(t *testing.T) {
	changed, err := Transition(model.StatusScheduled, model.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Transition(model.StatusScheduled, model.StatusCanceled)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Transition(model.StatusCanceled, model.StatusCanceled)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = Transition(model.StatusCanceled, model.StatusScheduled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Transition(model.StatusCompleted, model.StatusCanceled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = Transition(model.StatusScheduled, "done")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
