package handlers

import (
	"net/http"

	"github.com/carelane/hms/libs/httpx"
)

type API struct {
	Accounts     *AccountHandler
	People       *PeopleHandler
	Schedules    *ScheduleHandler
	Appointments *AppointmentHandler
	Clinical     *ClinicalHandler
	Masters      *MasterHandler
}

// Mount registers every /api route on mux. Registration and login stay open;
// everything else goes through protect when it is non-nil.
func (a API) Mount(mux *http.ServeMux, protect httpx.Middleware) {
	open := func(pattern string, fn http.HandlerFunc) { mux.Handle(pattern, fn) }
	guarded := func(pattern string, fn http.HandlerFunc) {
		if protect == nil {
			mux.Handle(pattern, fn)
			return
		}
		mux.Handle(pattern, protect(fn))
	}

	open("POST /api/patient/register", a.Accounts.RegisterPatient)
	open("POST /api/patient/login", a.Accounts.LoginPatient)
	open("POST /api/doctors/register", a.Accounts.RegisterDoctor)
	open("POST /api/doctors/login", a.Accounts.LoginDoctor)

	guarded("GET /api/patient", a.People.ListPatients)
	guarded("GET /api/patient/id/{id}", a.People.GetPatient)
	guarded("PUT /api/patient/id/{id}", a.People.UpdatePatient)
	guarded("DELETE /api/patient/id/{id}", a.People.DeletePatient)
	guarded("GET /api/patient/{email}", a.People.GetPatientByEmail)
	guarded("GET /api/doctors", a.People.ListDoctors)
	guarded("GET /api/doctors/{id}", a.People.GetDoctor)

	guarded("POST /api/schedule", a.Schedules.Create)
	guarded("GET /api/schedule/doctor/{doctorId}", a.Schedules.ListByDoctor)
	guarded("GET /api/schedule/entries/{scheduleId}/slots", a.Schedules.Slots)

	guarded("POST /api/appointments", a.Appointments.Create)
	guarded("GET /api/appointments", a.Appointments.List)
	guarded("GET /api/appointments/patient/{patientId}", a.Appointments.ListByPatient)
	guarded("GET /api/appointments/doctor/{doctorId}", a.Appointments.ListByDoctor)
	guarded("GET /api/appointments/{id}", a.Appointments.Get)
	guarded("PUT /api/appointments/{id}/status", a.Appointments.UpdateStatus)

	guarded("POST /api/diagnosis", a.Clinical.CreateDiagnosis)
	guarded("GET /api/diagnosis/appointments/{appointmentId}", a.Clinical.ListDiagnoses)
	guarded("POST /api/medical-history", a.Clinical.CreateHistory)
	guarded("GET /api/medical-history/patient/{patientId}", a.Clinical.ListHistory)

	guarded("POST /api/masters/states", a.Masters.CreateState)
	guarded("GET /api/masters/states", a.Masters.ListStates)
	guarded("POST /api/masters/states/{stateId}/cities", a.Masters.CreateCity)
	guarded("GET /api/masters/states/{stateId}/cities", a.Masters.ListCities)
}
