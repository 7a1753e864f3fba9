package storage

import (
	"context"
	"fmt"

	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClinicalRepository struct {
	pool *db.Pool
}

func NewClinicalRepository(pool *db.Pool) *ClinicalRepository {
	return &ClinicalRepository{pool: pool}
}

const diagnosisColumns = `id, appointment_id, doctor_id, diagnosis, prescription, notes, created_on`

func scanDiagnosis(row rowScanner) (model.Diagnosis, error) {
	var d model.Diagnosis
	err := row.Scan(&d.ID, &d.AppointmentID, &d.DoctorID, &d.Diagnosis, &d.Prescription, &d.Notes, &d.CreatedOn)
	return d, err
}

func (r *ClinicalRepository) CreateDiagnosis(ctx context.Context, d model.Diagnosis) (model.Diagnosis, error) {
	d.ID = uuid.NewString()
	created, err := scanDiagnosis(r.pool.QueryRow(ctx, `
		INSERT INTO diagnoses (id, appointment_id, doctor_id, diagnosis, prescription, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+diagnosisColumns,
		d.ID, d.AppointmentID, d.DoctorID, d.Diagnosis, d.Prescription, d.Notes))
	if err != nil {
		return model.Diagnosis{}, fmt.Errorf("insert diagnosis: %w", err)
	}
	return created, nil
}

func (r *ClinicalRepository) ListDiagnoses(ctx context.Context, appointmentID string) ([]model.Diagnosis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+diagnosisColumns+` FROM diagnoses
		WHERE appointment_id = $1
		ORDER BY created_on DESC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDiagnosis)
}

const historyColumns = `id, patient_id, doctor_id, conditions, surgeries, medications, notes, is_enable, created_on`

func scanHistory(row rowScanner) (model.MedicalHistory, error) {
	var h model.MedicalHistory
	err := row.Scan(&h.ID, &h.PatientID, &h.DoctorID, &h.Conditions, &h.Surgeries, &h.Medications, &h.Notes, &h.Enabled, &h.CreatedOn)
	return h, err
}

// CreateHistory writes the history row and the patient_fills_history link in
// one transaction.
func (r *ClinicalRepository) CreateHistory(ctx context.Context, h model.MedicalHistory) (model.MedicalHistory, error) {
	h.ID = uuid.NewString()
	var created model.MedicalHistory
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanHistory(tx.QueryRow(ctx, `
			INSERT INTO medical_history (id, patient_id, doctor_id, conditions, surgeries, medications, notes, is_enable)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
			RETURNING `+historyColumns,
			h.ID, h.PatientID, h.DoctorID, h.Conditions, h.Surgeries, h.Medications, h.Notes))
		if err != nil {
			return fmt.Errorf("insert medical history: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO patient_fills_history (patient_id, history_id) VALUES ($1, $2)
		`, created.PatientID, created.ID); err != nil {
			return fmt.Errorf("link medical history: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.MedicalHistory{}, err
	}
	return created, nil
}

func (r *ClinicalRepository) ListHistory(ctx context.Context, patientID string) ([]model.MedicalHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+historyColumns+` FROM medical_history
		WHERE patient_id = $1 AND is_enable
		ORDER BY created_on DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanHistory)
}
