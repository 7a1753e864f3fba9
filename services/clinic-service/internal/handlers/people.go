package handlers

import (
	"net/http"
	"strings"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"go.uber.org/zap"
)

type PeopleHandler struct {
	patients PatientStore
	doctors  DoctorStore
	logger   *zap.Logger
}

func NewPeopleHandler(patients PatientStore, doctors DoctorStore, logger *zap.Logger) *PeopleHandler {
	return &PeopleHandler{patients: patients, doctors: doctors, logger: logger}
}

type updatePatientRequest struct {
	Name          *string       `json:"name" validate:"omitempty,min=1,max=200"`
	Gender        *model.Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	StreetAddress *string       `json:"street_address" validate:"omitempty,max=500"`
	CityID        *string       `json:"city_id" validate:"omitempty,uuid"`
	StateID       *string       `json:"state_id" validate:"omitempty,uuid"`
	PinCode       *string       `json:"pin_code" validate:"omitempty,max=20"`
}

func (h *PeopleHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	list, err := h.patients.List(r.Context())
	if err != nil {
		storeFailure(w, h.logger, "list patients", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *PeopleHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.patients.Get(r.Context(), id)
	if err != nil {
		storeFailure(w, h.logger, "get patient", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PeopleHandler) GetPatientByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.PathValue("email")))
	if email == "" {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	p, err := h.patients.GetByEmail(r.Context(), email)
	if err != nil {
		storeFailure(w, h.logger, "get patient", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PeopleHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updatePatientRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.patients.Update(r.Context(), id, model.PatientUpdate{
		Name:          trimmed(req.Name),
		Gender:        req.Gender,
		StreetAddress: trimmed(req.StreetAddress),
		CityID:        trimmed(req.CityID),
		StateID:       trimmed(req.StateID),
		PinCode:       trimmed(req.PinCode),
	})
	if err != nil {
		storeFailure(w, h.logger, "update patient", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PeopleHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.patients.Delete(r.Context(), id); err != nil {
		storeFailure(w, h.logger, "delete patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PeopleHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context())
	if err != nil {
		storeFailure(w, h.logger, "list doctors", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *PeopleHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.doctors.Get(r.Context(), id)
	if err != nil {
		storeFailure(w, h.logger, "get doctor", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}
