package model

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q: want scheduled, completed or canceled", s)
	}
	return st, nil
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type Appointment struct {
	ID        string            `json:"id"`
	PatientID string            `json:"patient_id"`
	DoctorID  string            `json:"doctor_id"`
	Date      Date              `json:"date"`
	StartTime TimeOfDay         `json:"start_time"`
	EndTime   TimeOfDay         `json:"end_time"`
	Status    AppointmentStatus `json:"status"`
	CreatedOn time.Time         `json:"created_on"`
}

// Attendance is the patient's intake note written with the appointment.
type Attendance struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	Concerns      string `json:"concerns"`
	Symptoms      string `json:"symptoms"`
}

// BookedAppointment is what the writer returns: the appointment and its
// attendance row, committed together.
type BookedAppointment struct {
	Appointment
	Concerns string `json:"concerns"`
	Symptoms string `json:"symptoms"`
}
