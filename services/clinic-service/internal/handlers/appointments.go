package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/booking"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	appointments AppointmentStore
	schedules    ScheduleStore
	policy       booking.Policy
	logger       *zap.Logger
}

func NewAppointmentHandler(appointments AppointmentStore, schedules ScheduleStore, policy booking.Policy, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, schedules: schedules, policy: policy, logger: logger}
}

type createAppointmentRequest struct {
	PatientID string `json:"patient_id" validate:"required,uuid"`
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,ymd"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Status    string `json:"status" validate:"omitempty,eq=scheduled"`
	Concerns  string `json:"concerns" validate:"max=2000"`
	Symptoms  string `json:"symptoms" validate:"max=2000"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,appt_status"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if !decode(w, r, &req) {
		return
	}
	date, _ := model.ParseDate(req.Date)
	start, _ := model.ParseTimeOfDay(req.StartTime)
	end, _ := model.ParseTimeOfDay(req.EndTime)
	if start >= end {
		httpx.WriteError(w, http.StatusBadRequest, model.ErrWindowOrder.Error())
		return
	}

	ctx := r.Context()
	if h.policy.Strict {
		entries, err := h.schedules.ListByDoctorDay(ctx, req.DoctorID, date.Weekday())
		if err != nil {
			storeFailure(w, h.logger, "load schedule", err)
			return
		}
		if err := h.policy.CheckSlot(entries, date, start, end); err != nil {
			httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	booked, err := h.appointments.Create(ctx, model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusScheduled,
	}, model.Attendance{
		Concerns: strings.TrimSpace(req.Concerns),
		Symptoms: strings.TrimSpace(req.Symptoms),
	})
	if err != nil {
		switch {
		case storage.IsDuplicate(err):
			httpx.WriteError(w, http.StatusConflict, "slot already booked")
		case storage.IsMissingReference(err):
			httpx.WriteError(w, http.StatusUnprocessableEntity, "patient or doctor does not exist")
		default:
			storeFailure(w, h.logger, "create appointment", err)
		}
		return
	}
	h.logger.Info("appointment booked",
		zap.String("appointment_id", booked.ID),
		zap.String("doctor_id", booked.DoctorID),
		zap.Stringer("date", booked.Date),
		zap.Stringer("start_time", booked.StartTime),
	)
	httpx.WriteJSON(w, http.StatusCreated, booked)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	next, _ := model.ParseAppointmentStatus(req.Status)
	appt, err := h.appointments.UpdateStatus(r.Context(), id, next, time.Now().UTC())
	if err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			httpx.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		storeFailure(w, h.logger, "update appointment status", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	appt, err := h.appointments.Get(r.Context(), id)
	if err != nil {
		storeFailure(w, h.logger, "get appointment", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.appointments.List(r.Context())
	if err != nil {
		storeFailure(w, h.logger, "list appointments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *AppointmentHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "patientId")
	if !ok {
		return
	}
	list, err := h.appointments.ListByPatient(r.Context(), patientID)
	if err != nil {
		storeFailure(w, h.logger, "list appointments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *AppointmentHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "doctorId")
	if !ok {
		return
	}
	list, err := h.appointments.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		storeFailure(w, h.logger, "list appointments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
