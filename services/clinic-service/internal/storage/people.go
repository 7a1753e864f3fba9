package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelane/hms/libs/db"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
)

type PatientRepository struct {
	pool *db.Pool
}

func NewPatientRepository(pool *db.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

const patientColumns = `id, email, password_hash, name, gender, street_address, city_id, state_id, pin_code, created_on`

func scanPatient(row rowScanner) (model.Patient, error) {
	var p model.Patient
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Name, &p.Gender, &p.StreetAddress,
		&p.CityID, &p.StateID, &p.PinCode, &p.CreatedOn)
	return p, err
}

func (r *PatientRepository) Create(ctx context.Context, p model.Patient) (model.Patient, error) {
	p.ID = uuid.NewString()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, email, password_hash, name, gender, street_address, city_id, state_id, pin_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+patientColumns,
		p.ID, strings.ToLower(p.Email), p.PasswordHash, p.Name, p.Gender, p.StreetAddress, p.CityID, p.StateID, p.PinCode)
	created, err := scanPatient(row)
	if err != nil {
		return model.Patient{}, fmt.Errorf("insert patient: %w", err)
	}
	return created, nil
}

func (r *PatientRepository) Get(ctx context.Context, id string) (model.Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	return p, notFound(err)
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (model.Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE lower(email) = lower($1)`, email))
	return p, notFound(err)
}

func (r *PatientRepository) List(ctx context.Context) ([]model.Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_on DESC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPatient)
}

func (r *PatientRepository) Update(ctx context.Context, id string, u model.PatientUpdate) (model.Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `
		UPDATE patients SET
			name = COALESCE($2, name),
			gender = COALESCE($3, gender),
			street_address = COALESCE($4, street_address),
			city_id = COALESCE($5, city_id),
			state_id = COALESCE($6, state_id),
			pin_code = COALESCE($7, pin_code)
		WHERE id = $1
		RETURNING `+patientColumns,
		id, u.Name, u.Gender, u.StreetAddress, u.CityID, u.StateID, u.PinCode))
	return p, notFound(err)
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type DoctorRepository struct {
	pool *db.Pool
}

func NewDoctorRepository(pool *db.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

const doctorColumns = `id, email, password_hash, name, specialization, gender, is_enable, registered_on`

func scanDoctor(row rowScanner) (model.Doctor, error) {
	var d model.Doctor
	err := row.Scan(&d.ID, &d.Email, &d.PasswordHash, &d.Name, &d.Specialization, &d.Gender, &d.Enabled, &d.RegisteredOn)
	return d, err
}

func (r *DoctorRepository) Create(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	d.ID = uuid.NewString()
	created, err := scanDoctor(r.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, email, password_hash, name, specialization, gender, is_enable)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+doctorColumns,
		d.ID, strings.ToLower(d.Email), d.PasswordHash, d.Name, d.Specialization, d.Gender, bool(d.Enabled)))
	if err != nil {
		return model.Doctor{}, fmt.Errorf("insert doctor: %w", err)
	}
	return created, nil
}

func (r *DoctorRepository) Get(ctx context.Context, id string) (model.Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id))
	return d, notFound(err)
}

func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (model.Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE lower(email) = lower($1)`, email))
	return d, notFound(err)
}

func (r *DoctorRepository) List(ctx context.Context) ([]model.Doctor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDoctor)
}
