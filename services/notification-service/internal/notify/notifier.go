package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carelane/hms/libs/kafkax"
	"github.com/carelane/hms/services/notification-service/internal/email"
	"github.com/carelane/hms/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TopicAppointmentBooked        = "clinic.appointment.booked.v1"
	TopicAppointmentStatusChanged = "clinic.appointment.status_changed.v1"
)

var Topics = []string{TopicAppointmentBooked, TopicAppointmentStatusChanged}

type contact struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	DoctorName   string `json:"doctor_name"`
}

type appointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	From          string `json:"from"`
	To            string `json:"to"`
	contact
}

type Recorder interface {
	Insert(ctx context.Context, n storage.Notification) error
}

// Notifier turns clinic appointment events into patient e-mails and records
// every attempt.
type Notifier struct {
	sender     email.Sender
	store      Recorder
	logger     *zap.Logger
	clinicName string
}

func New(sender email.Sender, store Recorder, logger *zap.Logger, clinicName string) *Notifier {
	if strings.TrimSpace(clinicName) == "" {
		clinicName = "the clinic"
	}
	return &Notifier{sender: sender, store: store, logger: logger, clinicName: clinicName}
}

// Handle returns an error only when the attempt could not be recorded; the
// consumer then retries the same event. Malformed events are dropped.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)
	var evt appointmentEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		n.logger.Error("invalid event payload", zap.Error(err), zap.String("topic", msg.Topic))
		return nil
	}
	if evt.AppointmentID == "" || evt.PatientEmail == "" {
		n.logger.Error("missing event fields", zap.String("topic", msg.Topic), zap.String("event_id", meta.EventID))
		return nil
	}

	kind, subject, body, ok := n.compose(msg.Topic, evt)
	if !ok {
		n.logger.Debug("event needs no notification", zap.String("topic", msg.Topic), zap.String("to", evt.To))
		return nil
	}

	rec := storage.Notification{
		EventID:       meta.EventID,
		AppointmentID: evt.AppointmentID,
		Kind:          kind,
		Recipient:     evt.PatientEmail,
		Subject:       subject,
		Status:        storage.StatusSent,
	}
	if err := n.sender.Send(evt.PatientEmail, subject, body); err != nil {
		rec.Status = storage.StatusFailed
		rec.Error = err.Error()
		n.logger.Error("email send failed", zap.Error(err), zap.String("appointment_id", evt.AppointmentID))
	}
	if err := n.store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	n.logger.Info("notification processed",
		zap.String("appointment_id", evt.AppointmentID),
		zap.String("kind", kind),
		zap.String("status", rec.Status),
	)
	return nil
}

func (n *Notifier) compose(topic string, evt appointmentEvent) (kind, subject, body string, ok bool) {
	when := fmt.Sprintf("%s at %s", evt.Date, shortTime(evt.StartTime))
	doctor := evt.DoctorName
	if doctor == "" {
		doctor = "your doctor"
	}
	greeting := "Hello"
	if evt.PatientName != "" {
		greeting += " " + evt.PatientName
	}

	switch {
	case topic == TopicAppointmentBooked:
		return "booked", "Appointment confirmed",
			fmt.Sprintf("%s,\n\nYour appointment with %s on %s (%s) is confirmed.\n\nReference: %s\n",
				greeting, doctor, when, n.clinicName, evt.AppointmentID), true
	case topic == TopicAppointmentStatusChanged && evt.To == "canceled":
		return "canceled", "Appointment canceled",
			fmt.Sprintf("%s,\n\nYour appointment with %s on %s has been canceled.\n\nReference: %s\n",
				greeting, doctor, when, evt.AppointmentID), true
	case topic == TopicAppointmentStatusChanged && evt.To == "completed":
		return "completed", "Thank you for your visit",
			fmt.Sprintf("%s,\n\nThank you for visiting %s on %s. Your records are available from the front desk.\n\nReference: %s\n",
				greeting, n.clinicName, evt.Date, evt.AppointmentID), true
	}
	return "", "", "", false
}

// shortTime turns HH:MM:SS into HH:MM.
func shortTime(s string) string {
	if len(s) == len("15:04:05") && strings.HasSuffix(s, ":00") {
		return s[:5]
	}
	return s
}
