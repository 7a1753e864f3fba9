package handlers

import (
	"net/http"
	"testing"

	"github.com/carelane/hms/libs/auth"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientProfile(t *testing.T) {
	s := newTestServer(t, true)
	pat, _ := s.seedPeople(t)

	rec := s.do(t, http.MethodGet, "/api/patient/PAT@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pat.ID, decodeBody[model.Patient](t, rec).ID)

	rec = s.do(t, http.MethodPut, "/api/patient/id/"+pat.ID, map[string]any{"name": " Patricia ", "pin_code": "560001"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[model.Patient](t, rec)
	assert.Equal(t, "Patricia", updated.Name)
	assert.Equal(t, "560001", updated.PinCode)
	assert.Equal(t, pat.Email, updated.Email)

	rec = s.do(t, http.MethodPut, "/api/patient/id/"+pat.ID, map[string]any{"gender": "robot"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/patient", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Patient](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/patient/id/"+pat.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/patient/id/"+pat.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/patient/id/"+pat.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/patient/id/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDoctorLookup(t *testing.T) {
	s := newTestServer(t, true)
	_, doc := s.seedPeople(t)

	rec := s.do(t, http.MethodGet, "/api/doctors/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Doc", decodeBody[model.Doctor](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/doctors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.Doctor](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/doctors/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiagnosisAndHistory(t *testing.T) {
	s := newTestServer(t, false)
	pat, doc := s.seedPeople(t)

	rec := s.do(t, http.MethodPost, "/api/appointments", map[string]any{
		"patient_id": pat.ID, "doctor_id": doc.ID, "date": "2024-04-15", "start_time": "09:00", "end_time": "09:30",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	apptID := decodeBody[model.BookedAppointment](t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/diagnosis", map[string]any{
		"appointment_id": apptID, "doctor_id": doc.ID, "diagnosis": "migraine", "prescription": "rest",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/diagnosis", map[string]any{
		"appointment_id": apptID, "doctor_id": doc.ID, "diagnosis": "dehydration", "prescription": "water",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/diagnosis", map[string]any{
		"appointment_id": uuid.NewString(), "doctor_id": doc.ID, "diagnosis": "x", "prescription": "y",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/diagnosis", map[string]any{"appointment_id": apptID, "doctor_id": doc.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/diagnosis/appointments/"+apptID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	diagnoses := decodeBody[[]model.Diagnosis](t, rec)
	require.Len(t, diagnoses, 2)
	assert.Equal(t, "dehydration", diagnoses[0].Diagnosis)

	rec = s.do(t, http.MethodPost, "/api/medical-history", map[string]any{
		"patient_id": pat.ID, "conditions": "asthma", "medications": "inhaler",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	history := decodeBody[model.MedicalHistory](t, rec)
	assert.Nil(t, history.DoctorID)
	assert.True(t, bool(history.Enabled))

	rec = s.do(t, http.MethodGet, "/api/medical-history/patient/"+pat.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.MedicalHistory](t, rec), 1)
}

func TestMasters(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(t, http.MethodPost, "/api/masters/states", map[string]string{"state": "Karnataka"})
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeBody[model.State](t, rec)

	rec = s.do(t, http.MethodPost, "/api/masters/states", map[string]string{"state": "Karnataka"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/masters/states/"+state.ID+"/cities", map[string]string{"city": "Mysuru"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/masters/states/"+uuid.NewString()+"/cities", map[string]string{"city": "Nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/masters/states/"+state.ID+"/cities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cities := decodeBody[[]model.City](t, rec)
	require.Len(t, cities, 1)
	assert.Equal(t, "Mysuru", cities[0].City)
}

func TestMountGuardsAllButAccountRoutes(t *testing.T) {
	s := newTestServer(t, true)
	mux := http.NewServeMux()
	api := API{
		Accounts:     NewAccountHandler(fakePatients{s.db}, fakeDoctors{s.db}, s.signer, nil),
		People:       NewPeopleHandler(fakePatients{s.db}, fakeDoctors{s.db}, nil),
		Schedules:    &ScheduleHandler{},
		Appointments: &AppointmentHandler{},
		Clinical:     &ClinicalHandler{},
		Masters:      &MasterHandler{},
	}
	api.Mount(mux, auth.RequireAuth(s.signer))
	s.handler = mux

	rec := s.do(t, http.MethodGet, "/api/doctors", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/patient/register", map[string]any{"email": "a@b.co", "password": "secret1", "name": "A"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
