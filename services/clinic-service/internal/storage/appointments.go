package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/services/clinic-service/internal/booking"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

const appointmentColumns = `id, patient_id, doctor_id, date, start_time, end_time, status, created_on`

func scanAppointment(row rowScanner) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.StartTime, &a.EndTime, &a.Status, &a.CreatedOn)
	return a, err
}

// Create books an appointment. The appointment row, its attendance row and
// the booked event commit together or not at all. A second live booking of
// the same doctor slot fails the unique index (see IsDuplicate).
func (r *AppointmentRepository) Create(ctx context.Context, a model.Appointment, att model.Attendance) (model.BookedAppointment, error) {
	a.ID = uuid.NewString()
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}

	var booked model.BookedAppointment
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		created, err := scanAppointment(tx.QueryRow(ctx, `
			INSERT INTO appointments (id, patient_id, doctor_id, date, start_time, end_time, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+appointmentColumns,
			a.ID, a.PatientID, a.DoctorID, a.Date, a.StartTime, a.EndTime, string(a.Status)))
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO patient_attendance (appointment_id, patient_id, concerns, symptoms)
			VALUES ($1, $2, $3, $4)
		`, created.ID, created.PatientID, att.Concerns, att.Symptoms); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}

		contact, err := lookupContact(ctx, tx, created.PatientID, created.DoctorID)
		if err != nil {
			return err
		}
		evt, err := outbox.AppointmentBooked(created, contact)
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}

		booked = model.BookedAppointment{Appointment: created, Concerns: att.Concerns, Symptoms: att.Symptoms}
		return nil
	})
	if err != nil {
		return model.BookedAppointment{}, err
	}
	return booked, nil
}

// UpdateStatus applies booking.Transition under a row lock. Repeating the
// current status returns the row unchanged and emits nothing.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, next model.AppointmentStatus, at time.Time) (model.Appointment, error) {
	var out model.Appointment
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanAppointment(tx.QueryRow(ctx,
			`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err)
		}
		changed, err := booking.Transition(current.Status, next)
		if err != nil {
			return err
		}
		if !changed {
			out = current
			return nil
		}

		updated, err := scanAppointment(tx.QueryRow(ctx, `
			UPDATE appointments SET status = $2 WHERE id = $1
			RETURNING `+appointmentColumns, id, string(next)))
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		contact, err := lookupContact(ctx, tx, updated.PatientID, updated.DoctorID)
		if err != nil {
			return err
		}
		evt, err := outbox.AppointmentStatusChanged(updated, current.Status, contact, at)
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
		out = updated
		return nil
	})
	return out, err
}

func lookupContact(ctx context.Context, tx pgx.Tx, patientID, doctorID string) (outbox.Contact, error) {
	var c outbox.Contact
	err := tx.QueryRow(ctx, `
		SELECT p.name, p.email, d.name
		FROM patients p, doctors d
		WHERE p.id = $1 AND d.id = $2
	`, patientID, doctorID).Scan(&c.PatientName, &c.PatientEmail, &c.DoctorName)
	if err != nil {
		return outbox.Contact{}, fmt.Errorf("lookup contact: %w", err)
	}
	return c, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
	return a, notFound(err)
}

func (r *AppointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY date DESC, start_time ASC`)
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	return r.query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE patient_id = $1
		ORDER BY date DESC, start_time ASC`, patientID)
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error) {
	return r.query(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE doctor_id = $1
		ORDER BY date DESC, start_time ASC`, doctorID)
}

// BookedStarts lists start times already held by live bookings of doctor on date.
func (r *AppointmentRepository) BookedStarts(ctx context.Context, doctorID string, date model.Date) ([]model.TimeOfDay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'canceled'
		ORDER BY start_time
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (model.TimeOfDay, error) {
		var t model.TimeOfDay
		err := row.Scan(&t)
		return t, err
	})
}

func (r *AppointmentRepository) query(ctx context.Context, sql string, args ...any) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}
