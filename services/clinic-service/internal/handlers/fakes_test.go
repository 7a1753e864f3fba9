package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carelane/hms/libs/auth"
	"github.com/carelane/hms/services/clinic-service/internal/booking"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	errUnique  = &pgconn.PgError{Code: "23505"}
	errMissing = &pgconn.PgError{Code: "23503"}
)

// memDB backs every fake store so foreign keys can be checked across them.
type memDB struct {
	mu           sync.Mutex
	patients     map[string]model.Patient
	doctors      map[string]model.Doctor
	schedules    map[string]model.ScheduleEntry
	appointments map[string]model.Appointment
	diagnoses    []model.Diagnosis
	history      []model.MedicalHistory
	states       map[string]model.State
	cities       []model.City
}

func newMemDB() *memDB {
	return &memDB{
		patients:     map[string]model.Patient{},
		doctors:      map[string]model.Doctor{},
		schedules:    map[string]model.ScheduleEntry{},
		appointments: map[string]model.Appointment{},
		states:       map[string]model.State{},
	}
}

type fakePatients struct{ db *memDB }

func (f fakePatients) Create(_ context.Context, p model.Patient) (model.Patient, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p.Email = strings.ToLower(p.Email)
	for _, existing := range f.db.patients {
		if existing.Email == p.Email {
			return model.Patient{}, errUnique
		}
	}
	p.ID = uuid.NewString()
	p.CreatedOn = time.Now()
	f.db.patients[p.ID] = p
	return p, nil
}

func (f fakePatients) Get(_ context.Context, id string) (model.Patient, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.patients[id]
	if !ok {
		return model.Patient{}, storage.ErrNotFound
	}
	return p, nil
}

func (f fakePatients) GetByEmail(_ context.Context, email string) (model.Patient, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.patients {
		if p.Email == strings.ToLower(email) {
			return p, nil
		}
	}
	return model.Patient{}, storage.ErrNotFound
}

func (f fakePatients) List(context.Context) ([]model.Patient, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Patient{}
	for _, p := range f.db.patients {
		out = append(out, p)
	}
	return out, nil
}

func (f fakePatients) Update(_ context.Context, id string, u model.PatientUpdate) (model.Patient, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.patients[id]
	if !ok {
		return model.Patient{}, storage.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.StreetAddress != nil {
		p.StreetAddress = *u.StreetAddress
	}
	if u.CityID != nil {
		p.CityID = u.CityID
	}
	if u.StateID != nil {
		p.StateID = u.StateID
	}
	if u.PinCode != nil {
		p.PinCode = *u.PinCode
	}
	f.db.patients[id] = p
	return p, nil
}

func (f fakePatients) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.patients[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.db.patients, id)
	return nil
}

type fakeDoctors struct{ db *memDB }

func (f fakeDoctors) Create(_ context.Context, d model.Doctor) (model.Doctor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d.Email = strings.ToLower(d.Email)
	for _, existing := range f.db.doctors {
		if existing.Email == d.Email {
			return model.Doctor{}, errUnique
		}
	}
	d.ID = uuid.NewString()
	d.RegisteredOn = time.Now()
	f.db.doctors[d.ID] = d
	return d, nil
}

func (f fakeDoctors) Get(_ context.Context, id string) (model.Doctor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d, ok := f.db.doctors[id]
	if !ok {
		return model.Doctor{}, storage.ErrNotFound
	}
	return d, nil
}

func (f fakeDoctors) GetByEmail(_ context.Context, email string) (model.Doctor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, d := range f.db.doctors {
		if d.Email == strings.ToLower(email) {
			return d, nil
		}
	}
	return model.Doctor{}, storage.ErrNotFound
}

func (f fakeDoctors) List(context.Context) ([]model.Doctor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Doctor{}
	for _, d := range f.db.doctors {
		out = append(out, d)
	}
	return out, nil
}

type fakeSchedules struct{ db *memDB }

func (f fakeSchedules) Create(_ context.Context, e model.ScheduleEntry) (model.ScheduleEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.doctors[e.DoctorID]; !ok {
		return model.ScheduleEntry{}, errMissing
	}
	e.ID = uuid.NewString()
	e.CreatedOn = time.Now()
	f.db.schedules[e.ID] = e
	return e, nil
}

func (f fakeSchedules) Get(_ context.Context, id string) (model.ScheduleEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.schedules[id]
	if !ok {
		return model.ScheduleEntry{}, storage.ErrNotFound
	}
	return e, nil
}

func (f fakeSchedules) ListByDoctor(_ context.Context, doctorID string) ([]model.ScheduleEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.ScheduleEntry{}
	for _, e := range f.db.schedules {
		if e.DoctorID == doctorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek.Index() < out[j].DayOfWeek.Index()
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f fakeSchedules) ListByDoctorDay(ctx context.Context, doctorID string, day model.Weekday) ([]model.ScheduleEntry, error) {
	all, _ := f.ListByDoctor(ctx, doctorID)
	out := []model.ScheduleEntry{}
	for _, e := range all {
		if e.DayOfWeek == day {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeAppointments struct{ db *memDB }

func (f fakeAppointments) Create(_ context.Context, a model.Appointment, att model.Attendance) (model.BookedAppointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, okP := f.db.patients[a.PatientID]
	_, okD := f.db.doctors[a.DoctorID]
	if !okP || !okD {
		return model.BookedAppointment{}, errMissing
	}
	for _, existing := range f.db.appointments {
		if existing.DoctorID == a.DoctorID && existing.Date.Equal(a.Date) &&
			existing.StartTime == a.StartTime && existing.Status != model.StatusCanceled {
			return model.BookedAppointment{}, errUnique
		}
	}
	a.ID = uuid.NewString()
	a.Status = model.StatusScheduled
	a.CreatedOn = time.Now()
	f.db.appointments[a.ID] = a
	return model.BookedAppointment{Appointment: a, Concerns: att.Concerns, Symptoms: att.Symptoms}, nil
}

func (f fakeAppointments) UpdateStatus(_ context.Context, id string, next model.AppointmentStatus, _ time.Time) (model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.appointments[id]
	if !ok {
		return model.Appointment{}, storage.ErrNotFound
	}
	changed, err := booking.Transition(a.Status, next)
	if err != nil {
		return model.Appointment{}, err
	}
	if changed {
		a.Status = next
		f.db.appointments[id] = a
	}
	return a, nil
}

func (f fakeAppointments) Get(_ context.Context, id string) (model.Appointment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.appointments[id]
	if !ok {
		return model.Appointment{}, storage.ErrNotFound
	}
	return a, nil
}

func (f fakeAppointments) filter(keep func(model.Appointment) bool) []model.Appointment {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Appointment{}
	for _, a := range f.db.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Time().After(out[j].Date.Time())
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (f fakeAppointments) List(context.Context) ([]model.Appointment, error) {
	return f.filter(func(model.Appointment) bool { return true }), nil
}

func (f fakeAppointments) ListByPatient(_ context.Context, patientID string) ([]model.Appointment, error) {
	return f.filter(func(a model.Appointment) bool { return a.PatientID == patientID }), nil
}

func (f fakeAppointments) ListByDoctor(_ context.Context, doctorID string) ([]model.Appointment, error) {
	return f.filter(func(a model.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (f fakeAppointments) BookedStarts(_ context.Context, doctorID string, date model.Date) ([]model.TimeOfDay, error) {
	var out []model.TimeOfDay
	for _, a := range f.filter(func(a model.Appointment) bool {
		return a.DoctorID == doctorID && a.Date.Equal(date) && a.Status != model.StatusCanceled
	}) {
		out = append(out, a.StartTime)
	}
	return out, nil
}

type fakeClinical struct{ db *memDB }

func (f fakeClinical) CreateDiagnosis(_ context.Context, d model.Diagnosis) (model.Diagnosis, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.appointments[d.AppointmentID]; !ok {
		return model.Diagnosis{}, errMissing
	}
	d.ID = uuid.NewString()
	d.CreatedOn = time.Now()
	f.db.diagnoses = append(f.db.diagnoses, d)
	return d, nil
}

func (f fakeClinical) ListDiagnoses(_ context.Context, appointmentID string) ([]model.Diagnosis, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Diagnosis{}
	for i := len(f.db.diagnoses) - 1; i >= 0; i-- {
		if f.db.diagnoses[i].AppointmentID == appointmentID {
			out = append(out, f.db.diagnoses[i])
		}
	}
	return out, nil
}

func (f fakeClinical) CreateHistory(_ context.Context, h model.MedicalHistory) (model.MedicalHistory, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.patients[h.PatientID]; !ok {
		return model.MedicalHistory{}, errMissing
	}
	h.ID = uuid.NewString()
	h.Enabled = true
	h.CreatedOn = time.Now()
	f.db.history = append(f.db.history, h)
	return h, nil
}

func (f fakeClinical) ListHistory(_ context.Context, patientID string) ([]model.MedicalHistory, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.MedicalHistory{}
	for _, h := range f.db.history {
		if h.PatientID == patientID && bool(h.Enabled) {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeMasters struct{ db *memDB }

func (f fakeMasters) CreateState(_ context.Context, name string) (model.State, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.states {
		if s.State == name {
			return model.State{}, errUnique
		}
	}
	s := model.State{ID: uuid.NewString(), State: name, Enabled: true, CreatedOn: time.Now()}
	f.db.states[s.ID] = s
	return s, nil
}

func (f fakeMasters) ListStates(context.Context) ([]model.State, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.State{}
	for _, s := range f.db.states {
		out = append(out, s)
	}
	return out, nil
}

func (f fakeMasters) CreateCity(_ context.Context, stateID, name string) (model.City, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.states[stateID]; !ok {
		return model.City{}, errMissing
	}
	c := model.City{ID: uuid.NewString(), StateID: stateID, City: name, Enabled: true, CreatedOn: time.Now()}
	f.db.cities = append(f.db.cities, c)
	return c, nil
}

func (f fakeMasters) ListCities(_ context.Context, stateID string) ([]model.City, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.City{}
	for _, c := range f.db.cities {
		if c.StateID == stateID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Wednesday 2024-04-10 09:00 UTC. The next Monday is 2024-04-15.
var testNow = time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC)

type testServer struct {
	db      *memDB
	handler http.Handler
	signer  *auth.Signer
}

func newTestServer(t *testing.T, strict bool) *testServer {
	t.Helper()
	signer, err := auth.NewSigner("test-secret-0123456789", "hms-test", time.Hour)
	require.NoError(t, err)

	db := newMemDB()
	logger := zap.NewNop()
	policy := booking.Policy{Strict: strict, Location: time.UTC, Now: func() time.Time { return testNow }}
	schedules := fakeSchedules{db}
	appointments := fakeAppointments{db}

	mux := http.NewServeMux()
	API{
		Accounts:     NewAccountHandler(fakePatients{db}, fakeDoctors{db}, signer, logger),
		People:       NewPeopleHandler(fakePatients{db}, fakeDoctors{db}, logger),
		Schedules:    NewScheduleHandler(schedules, appointments, policy, logger),
		Appointments: NewAppointmentHandler(appointments, schedules, policy, logger),
		Clinical:     NewClinicalHandler(fakeClinical{db}, logger),
		Masters:      NewMasterHandler(fakeMasters{db}, logger),
	}.Mount(mux, nil)
	return &testServer{db: db, handler: mux, signer: signer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) seedPeople(t *testing.T) (model.Patient, model.Doctor) {
	t.Helper()
	p, err := fakePatients{s.db}.Create(context.Background(), model.Patient{Email: "pat@example.com", Name: "Pat"})
	require.NoError(t, err)
	d, err := fakeDoctors{s.db}.Create(context.Background(), model.Doctor{Email: "doc@example.com", Name: "Doc", Enabled: true})
	require.NoError(t, err)
	return p, d
}

func (s *testServer) seedSchedule(t *testing.T, e model.ScheduleEntry) model.ScheduleEntry {
	t.Helper()
	created, err := fakeSchedules{s.db}.Create(context.Background(), e)
	require.NoError(t, err)
	return created
}

func tod(s string) model.TimeOfDay {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func todPtr(s string) *model.TimeOfDay {
	t := tod(s)
	return &t
}
