package handlers

import (
	"net/http"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/availability"
	"github.com/carelane/hms/services/clinic-service/internal/booking"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	schedules ScheduleStore
	booked    BookedLister
	policy    booking.Policy
	logger    *zap.Logger
}

// NewScheduleHandler wires schedule CRUD and slot listing. policy supplies the
// clinic clock used to resolve the next date of a weekday.
func NewScheduleHandler(schedules ScheduleStore, booked BookedLister, policy booking.Policy, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, booked: booked, policy: policy, logger: logger}
}

type createScheduleRequest struct {
	DoctorID   string      `json:"doctor_id" validate:"required,uuid"`
	DayOfWeek  string      `json:"day_of_week" validate:"required,weekday"`
	StartTime  string      `json:"start_time" validate:"required,clock"`
	EndTime    string      `json:"end_time" validate:"required,clock"`
	BreakStart string      `json:"break_start" validate:"omitempty,clock"`
	BreakEnd   string      `json:"break_end" validate:"omitempty,clock"`
	Enabled    *model.Flag `json:"is_enable"`
}

type slotItem struct {
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
	Available bool            `json:"available"`
}

type slotsResponse struct {
	ScheduleID string        `json:"schedule_id"`
	DoctorID   string        `json:"doctor_id,omitempty"`
	DayOfWeek  model.Weekday `json:"day_of_week,omitempty"`
	Date       *model.Date   `json:"date,omitempty"`
	Slots      []slotItem    `json:"slots"`
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := req.entry()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.schedules.Create(r.Context(), entry)
	if err != nil {
		if storage.IsMissingReference(err) {
			httpx.WriteError(w, http.StatusUnprocessableEntity, "doctor does not exist")
			return
		}
		storeFailure(w, h.logger, "create schedule", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

// entry assumes the request already passed validation.
func (req createScheduleRequest) entry() (model.ScheduleEntry, error) {
	day, _ := model.ParseWeekday(req.DayOfWeek)
	start, _ := model.ParseTimeOfDay(req.StartTime)
	end, _ := model.ParseTimeOfDay(req.EndTime)
	e := model.ScheduleEntry{
		DoctorID:  req.DoctorID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Enabled:   true,
	}
	if req.Enabled != nil {
		e.Enabled = *req.Enabled
	}
	if req.BreakStart != "" {
		bs, _ := model.ParseTimeOfDay(req.BreakStart)
		e.BreakStart = &bs
	}
	if req.BreakEnd != "" {
		be, _ := model.ParseTimeOfDay(req.BreakEnd)
		e.BreakEnd = &be
	}
	return e, e.Validate()
}

func (h *ScheduleHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "doctorId")
	if !ok {
		return
	}
	entries, err := h.schedules.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		storeFailure(w, h.logger, "list schedules", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// Slots resolves the entry's next date and lists its 30 minute slots. An
// unknown or disabled entry yields an empty list rather than an error.
func (h *ScheduleHandler) Slots(w http.ResponseWriter, r *http.Request) {
	scheduleID, ok := pathID(w, r, "scheduleId")
	if !ok {
		return
	}
	entry, err := h.schedules.Get(r.Context(), scheduleID)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteJSON(w, http.StatusOK, slotsResponse{ScheduleID: scheduleID, Slots: []slotItem{}})
			return
		}
		storeFailure(w, h.logger, "load schedule", err)
		return
	}

	plan := availability.PlanFor(entry, h.policy.Today())
	resp := slotsResponse{
		ScheduleID: entry.ID,
		DoctorID:   entry.DoctorID,
		DayOfWeek:  entry.DayOfWeek,
		Date:       &plan.Date,
		Slots:      make([]slotItem, 0, len(plan.Slots)),
	}
	if len(plan.Slots) > 0 {
		starts, err := h.booked.BookedStarts(r.Context(), entry.DoctorID, plan.Date)
		if err != nil {
			storeFailure(w, h.logger, "load booked slots", err)
			return
		}
		taken := make(map[model.TimeOfDay]struct{}, len(starts))
		for _, s := range starts {
			taken[s] = struct{}{}
		}
		for _, s := range plan.Slots {
			_, busy := taken[s.Start]
			resp.Slots = append(resp.Slots, slotItem{StartTime: s.Start, EndTime: s.End, Available: !busy})
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
