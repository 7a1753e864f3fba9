package model

import "time"

type Diagnosis struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	DoctorID      string    `json:"doctor_id"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  string    `json:"prescription"`
	Notes         string    `json:"notes,omitempty"`
	CreatedOn     time.Time `json:"created_on"`
}

type MedicalHistory struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    *string   `json:"doctor_id,omitempty"`
	Conditions  string    `json:"conditions"`
	Surgeries   string    `json:"surgeries"`
	Medications string    `json:"medications"`
	Notes       string    `json:"notes,omitempty"`
	Enabled     Flag      `json:"is_enable"`
	CreatedOn   time.Time `json:"created_on"`
}

type State struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Enabled   Flag      `json:"is_enable"`
	CreatedOn time.Time `json:"created_on"`
}

type City struct {
	ID        string    `json:"id"`
	StateID   string    `json:"state_id"`
	City      string    `json:"city"`
	Enabled   Flag      `json:"is_enable"`
	CreatedOn time.Time `json:"created_on"`
}
