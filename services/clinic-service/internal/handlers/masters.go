package handlers

import (
	"net/http"
	"strings"

	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"go.uber.org/zap"
)

type MasterHandler struct {
	store  MasterStore
	logger *zap.Logger
}

func NewMasterHandler(store MasterStore, logger *zap.Logger) *MasterHandler {
	return &MasterHandler{store: store, logger: logger}
}

type createStateRequest struct {
	State string `json:"state" validate:"required,max=100"`
}

type createCityRequest struct {
	City string `json:"city" validate:"required,max=100"`
}

func (h *MasterHandler) CreateState(w http.ResponseWriter, r *http.Request) {
	var req createStateRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.store.CreateState(r.Context(), strings.TrimSpace(req.State))
	if err != nil {
		if storage.IsDuplicate(err) {
			httpx.WriteError(w, http.StatusConflict, "state already exists")
			return
		}
		storeFailure(w, h.logger, "create state", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

func (h *MasterHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListStates(r.Context())
	if err != nil {
		storeFailure(w, h.logger, "list states", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *MasterHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	stateID, ok := pathID(w, r, "stateId")
	if !ok {
		return
	}
	var req createCityRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.store.CreateCity(r.Context(), stateID, strings.TrimSpace(req.City))
	if err != nil {
		switch {
		case storage.IsDuplicate(err):
			httpx.WriteError(w, http.StatusConflict, "city already exists")
		case storage.IsMissingReference(err):
			httpx.WriteError(w, http.StatusNotFound, "state not found")
		default:
			storeFailure(w, h.logger, "create city", err)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *MasterHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	stateID, ok := pathID(w, r, "stateId")
	if !ok {
		return
	}
	list, err := h.store.ListCities(r.Context(), stateID)
	if err != nil {
		storeFailure(w, h.logger, "list cities", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
