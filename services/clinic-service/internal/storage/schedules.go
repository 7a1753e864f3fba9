package storage

import (
	"context"
	"fmt"

	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
)

type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, doctor_id, day_of_week, start_time, end_time, break_start, break_end, is_enable, created_on`

func scanSchedule(row rowScanner) (model.ScheduleEntry, error) {
	var e model.ScheduleEntry
	err := row.Scan(&e.ID, &e.DoctorID, &e.DayOfWeek, &e.StartTime, &e.EndTime, &e.BreakStart, &e.BreakEnd, &e.Enabled, &e.CreatedOn)
	return e, err
}

func (r *ScheduleRepository) Create(ctx context.Context, e model.ScheduleEntry) (model.ScheduleEntry, error) {
	e.ID = uuid.NewString()
	created, err := scanSchedule(r.pool.QueryRow(ctx, `
		INSERT INTO schedules (id, doctor_id, day_of_week, start_time, end_time, break_start, break_end, is_enable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+scheduleColumns,
		e.ID, e.DoctorID, string(e.DayOfWeek), e.StartTime, e.EndTime, e.BreakStart, e.BreakEnd, bool(e.Enabled)))
	if err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("insert schedule: %w", err)
	}
	return created, nil
}

func (r *ScheduleRepository) Get(ctx context.Context, id string) (model.ScheduleEntry, error) {
	e, err := scanSchedule(r.pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id))
	return e, notFound(err)
}

// ListByDoctor returns entries Sunday first, then by start time.
func (r *ScheduleRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY array_position(ARRAY['sun','mon','tue','wed','thu','fri','sat'], day_of_week), start_time
	`, doctorID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSchedule)
}

func (r *ScheduleRepository) ListByDoctorDay(ctx context.Context, doctorID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE doctor_id = $1 AND day_of_week = $2
		ORDER BY start_time
	`, doctorID, string(day))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSchedule)
}
