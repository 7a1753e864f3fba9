package handlers

import (
	"net/http"
	"strings"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"go.uber.org/zap"
)

// ClinicalHandler serves diagnoses and medical history.
type ClinicalHandler struct {
	store  ClinicalStore
	logger *zap.Logger
}

func NewClinicalHandler(store ClinicalStore, logger *zap.Logger) *ClinicalHandler {
	return &ClinicalHandler{store: store, logger: logger}
}

type createDiagnosisRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required,uuid"`
	DoctorID      string `json:"doctor_id" validate:"required,uuid"`
	Diagnosis     string `json:"diagnosis" validate:"required,max=4000"`
	Prescription  string `json:"prescription" validate:"required,max=4000"`
	Notes         string `json:"notes" validate:"max=4000"`
}

type createHistoryRequest struct {
	PatientID   string `json:"patient_id" validate:"required,uuid"`
	DoctorID    string `json:"doctor_id" validate:"omitempty,uuid"`
	Conditions  string `json:"conditions" validate:"max=4000"`
	Surgeries   string `json:"surgeries" validate:"max=4000"`
	Medications string `json:"medications" validate:"max=4000"`
	Notes       string `json:"notes" validate:"max=4000"`
}

func (h *ClinicalHandler) CreateDiagnosis(w http.ResponseWriter, r *http.Request) {
	var req createDiagnosisRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.store.CreateDiagnosis(r.Context(), model.Diagnosis{
		AppointmentID: req.AppointmentID,
		DoctorID:      req.DoctorID,
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Prescription:  strings.TrimSpace(req.Prescription),
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		storeFailure(w, h.logger, "create diagnosis", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

func (h *ClinicalHandler) ListDiagnoses(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(w, r, "appointmentId")
	if !ok {
		return
	}
	list, err := h.store.ListDiagnoses(r.Context(), appointmentID)
	if err != nil {
		storeFailure(w, h.logger, "list diagnoses", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *ClinicalHandler) CreateHistory(w http.ResponseWriter, r *http.Request) {
	var req createHistoryRequest
	if !decode(w, r, &req) {
		return
	}
	created, err := h.store.CreateHistory(r.Context(), model.MedicalHistory{
		PatientID:   req.PatientID,
		DoctorID:    optionalID(req.DoctorID),
		Conditions:  strings.TrimSpace(req.Conditions),
		Surgeries:   strings.TrimSpace(req.Surgeries),
		Medications: strings.TrimSpace(req.Medications),
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		storeFailure(w, h.logger, "create medical history", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *ClinicalHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "patientId")
	if !ok {
		return
	}
	list, err := h.store.ListHistory(r.Context(), patientID)
	if err != nil {
		storeFailure(w, h.logger, "list medical history", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
