package availability

import (
	"testing"
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNextDate_SameWeekdayMovesToNextWeek(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 15, 45, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-11", NextDate(model.Wednesday, wednesday).String())
}

func TestNextDate_Examples(t *testing.T) {
	wednesday := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	cases := map[model.Weekday]string{
		model.Thursday:  "2026-03-05",
		model.Saturday:  "2026-03-07",
		model.Sunday:    "2026-03-08",
		model.Monday:    "2026-03-09",
		model.Tuesday:   "2026-03-10",
		model.Wednesday: "2026-03-11",
	}
	for day, want := range cases {
		assert.Equal(t, want, NextDate(day, wednesday).String(), string(day))
	}
}

func TestNextDate_Properties(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*3600)
	}
	start := time.Date(2026, 1, 1, 23, 30, 0, 0, loc)
	days := []model.Weekday{model.Sunday, model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday}

	for i := 0; i < 400; i++ {
		today := start.AddDate(0, 0, i)
		todayDate := model.DateOf(today)
		for _, day := range days {
			got := NextDate(day, today)
			assert.Equal(t, day, got.Weekday())
			assert.True(t, got.Time().After(todayDate.Time()), "%s for %s must be after %s", got, day, todayDate)
			assert.True(t, !got.Time().After(todayDate.AddDays(7).Time()), "%s for %s must be within 7 days of %s", got, day, todayDate)
		}
	}
}

func TestPlanFor(t *testing.T) {
	e := entry(t, "09:00", "10:00")
	e.DayOfWeek = model.Friday
	plan := PlanFor(e, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-03-06", plan.Date.String())
	assert.Len(t, plan.Slots, 2)
	assert.Equal(t, "sched-1", plan.ScheduleID)

	e.Enabled = false
	plan = PlanFor(e, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	assert.NotNil(t, plan.Slots)
	assert.Empty(t, plan.Slots)
}
