package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
)

// Topic names double as event types; one event type per Kafka topic.
const (
	TopicAppointmentBooked        = "clinic.appointment.booked.v1"
	TopicAppointmentStatusChanged = "clinic.appointment.status_changed.v1"
)

// Event is the envelope written to outbox_events inside the business transaction.
type Event struct {
	EventID       string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Contact is who the notification for an appointment goes to.
type Contact struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	DoctorName   string `json:"doctor_name"`
}

type AppointmentBookedPayload struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Contact
	BookedAt string `json:"booked_at"`
}

type AppointmentStatusChangedPayload struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	From          string `json:"from"`
	To            string `json:"to"`
	Contact
	ChangedAt string `json:"changed_at"`
}

func AppointmentBooked(a model.Appointment, c Contact) (Event, error) {
	return newEvent(a.ID, TopicAppointmentBooked, AppointmentBookedPayload{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          a.Date.String(),
		StartTime:     a.StartTime.String(),
		EndTime:       a.EndTime.String(),
		Contact:       c,
		BookedAt:      a.CreatedOn.UTC().Format(time.RFC3339),
	})
}

func AppointmentStatusChanged(a model.Appointment, from model.AppointmentStatus, c Contact, at time.Time) (Event, error) {
	return newEvent(a.ID, TopicAppointmentStatusChanged, AppointmentStatusChangedPayload{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		Date:          a.Date.String(),
		StartTime:     a.StartTime.String(),
		From:          string(from),
		To:            string(a.Status),
		Contact:       c,
		ChangedAt:     at.UTC().Format(time.RFC3339),
	})
}

func newEvent(aggregateID, eventType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		EventID:       uuid.NewString(),
		AggregateType: "appointment",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       b,
	}, nil
}
