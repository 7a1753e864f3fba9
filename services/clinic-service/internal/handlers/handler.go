package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PatientStore interface {
	Create(ctx context.Context, p model.Patient) (model.Patient, error)
	Get(ctx context.Context, id string) (model.Patient, error)
	GetByEmail(ctx context.Context, email string) (model.Patient, error)
	List(ctx context.Context) ([]model.Patient, error)
	Update(ctx context.Context, id string, u model.PatientUpdate) (model.Patient, error)
	Delete(ctx context.Context, id string) error
}

type DoctorStore interface {
	Create(ctx context.Context, d model.Doctor) (model.Doctor, error)
	Get(ctx context.Context, id string) (model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (model.Doctor, error)
	List(ctx context.Context) ([]model.Doctor, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, e model.ScheduleEntry) (model.ScheduleEntry, error)
	Get(ctx context.Context, id string) (model.ScheduleEntry, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]model.ScheduleEntry, error)
	ListByDoctorDay(ctx context.Context, doctorID string, day model.Weekday) ([]model.ScheduleEntry, error)
}

// BookedLister reports which slot starts are already taken on a date.
type BookedLister interface {
	BookedStarts(ctx context.Context, doctorID string, date model.Date) ([]model.TimeOfDay, error)
}

type AppointmentStore interface {
	BookedLister
	Create(ctx context.Context, a model.Appointment, att model.Attendance) (model.BookedAppointment, error)
	UpdateStatus(ctx context.Context, id string, next model.AppointmentStatus, at time.Time) (model.Appointment, error)
	Get(ctx context.Context, id string) (model.Appointment, error)
	List(ctx context.Context) ([]model.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]model.Appointment, error)
}

type ClinicalStore interface {
	CreateDiagnosis(ctx context.Context, d model.Diagnosis) (model.Diagnosis, error)
	ListDiagnoses(ctx context.Context, appointmentID string) ([]model.Diagnosis, error)
	CreateHistory(ctx context.Context, h model.MedicalHistory) (model.MedicalHistory, error)
	ListHistory(ctx context.Context, patientID string) ([]model.MedicalHistory, error)
}

type MasterStore interface {
	CreateState(ctx context.Context, name string) (model.State, error)
	ListStates(ctx context.Context) ([]model.State, error)
	CreateCity(ctx context.Context, stateID, name string) (model.City, error)
	ListCities(ctx context.Context, stateID string) ([]model.City, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	rules := map[string]func(string) error{
		"weekday": func(s string) error { _, err := model.ParseWeekday(s); return err },
		"clock":   func(s string) error { _, err := model.ParseTimeOfDay(s); return err },
		"ymd":     func(s string) error { _, err := model.ParseDate(s); return err },
		"appt_status": func(s string) error {
			_, err := model.ParseAppointmentStatus(s)
			return err
		},
	}
	for tag, parse := range rules {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return parse(fl.Field().String()) == nil
		})
	}
	return v
}

// decode reads and validates a request body, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "weekday":
			parts = append(parts, fe.Field()+" must be one of mon, tue, wed, thu, fri, sat, sun")
		case "clock":
			parts = append(parts, fe.Field()+" must be HH:MM or HH:MM:SS")
		case "ymd":
			parts = append(parts, fe.Field()+" must be YYYY-MM-DD")
		case "appt_status":
			parts = append(parts, fe.Field()+" must be one of scheduled, completed, canceled")
		default:
			if fe.Param() != "" {
				parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			} else {
				parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		}
	}
	return strings.Join(parts, "; ")
}

// pathID returns the {name} path segment when it is a UUID. Anything else
// cannot name a stored row, so the caller answers 404.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(r.PathValue(name))
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return "", false
	}
	return id, true
}

// storeFailure maps a repository error to its HTTP answer. what names the
// operation for both the log line and the 500 body.
func storeFailure(w http.ResponseWriter, logger *zap.Logger, what string, err error) {
	switch {
	case storage.IsNotFound(err):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case storage.IsDuplicate(err):
		httpx.WriteError(w, http.StatusConflict, "already exists")
	case storage.IsMissingReference(err):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "referenced record does not exist")
	case storage.IsRejected(err):
		httpx.WriteError(w, http.StatusBadRequest, "invalid values")
	default:
		logger.Error(what+" failed", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to "+what)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
