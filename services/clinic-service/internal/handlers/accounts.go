package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/carelane/hms/libs/auth"
	"github.com/carelane/hms/libs/httpx"
	"github.com/carelane/hms/services/clinic-service/internal/model"
	"github.com/carelane/hms/services/clinic-service/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type TokenSigner interface {
	Sign(subject, role, email string) (string, time.Time, error)
}

// AccountHandler serves registration and login for patients and doctors.
type AccountHandler struct {
	patients PatientStore
	doctors  DoctorStore
	signer   TokenSigner
	logger   *zap.Logger
}

func NewAccountHandler(patients PatientStore, doctors DoctorStore, signer TokenSigner, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{patients: patients, doctors: doctors, signer: signer, logger: logger}
}

type registerPatientRequest struct {
	Email         string       `json:"email" validate:"required,email,max=254"`
	Password      string       `json:"password" validate:"required,min=6,max=72"`
	Name          string       `json:"name" validate:"required,max=200"`
	Gender        model.Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	StreetAddress string       `json:"street_address" validate:"max=500"`
	CityID        string       `json:"city_id" validate:"omitempty,uuid"`
	StateID       string       `json:"state_id" validate:"omitempty,uuid"`
	PinCode       string       `json:"pin_code" validate:"max=20"`
}

type registerDoctorRequest struct {
	Email          string       `json:"email" validate:"required,email,max=254"`
	Password       string       `json:"password" validate:"required,min=6,max=72"`
	Name           string       `json:"name" validate:"required,max=200"`
	Specialization string       `json:"specialization" validate:"required,max=200"`
	Gender         model.Gender `json:"gender" validate:"omitempty,oneof=male female other"`
	Enabled        *model.Flag  `json:"is_enable"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Patient     *model.Patient `json:"patient,omitempty"`
	Doctor      *model.Doctor  `json:"doctor,omitempty"`
}

func (h *AccountHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req registerPatientRequest
	if !decode(w, r, &req) {
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	created, err := h.patients.Create(r.Context(), model.Patient{
		Email:         strings.TrimSpace(req.Email),
		PasswordHash:  hash,
		Name:          strings.TrimSpace(req.Name),
		Gender:        req.Gender,
		StreetAddress: strings.TrimSpace(req.StreetAddress),
		CityID:        optionalID(req.CityID),
		StateID:       optionalID(req.StateID),
		PinCode:       strings.TrimSpace(req.PinCode),
	})
	if err != nil {
		if storage.IsDuplicate(err) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		storeFailure(w, h.logger, "register patient", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *AccountHandler) RegisterDoctor(w http.ResponseWriter, r *http.Request) {
	var req registerDoctorRequest
	if !decode(w, r, &req) {
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	enabled := model.Flag(true)
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	created, err := h.doctors.Create(r.Context(), model.Doctor{
		Email:          strings.TrimSpace(req.Email),
		PasswordHash:   hash,
		Name:           strings.TrimSpace(req.Name),
		Specialization: strings.TrimSpace(req.Specialization),
		Gender:         req.Gender,
		Enabled:        enabled,
	})
	if err != nil {
		if storage.IsDuplicate(err) {
			httpx.WriteError(w, http.StatusConflict, "email already registered")
			return
		}
		storeFailure(w, h.logger, "register doctor", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *AccountHandler) LoginPatient(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RolePatient, func(ctx context.Context, email string) (string, string, loginResponse, error) {
		p, err := h.patients.GetByEmail(ctx, email)
		return p.ID, p.PasswordHash, loginResponse{Patient: &p}, err
	})
}

func (h *AccountHandler) LoginDoctor(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, auth.RoleDoctor, func(ctx context.Context, email string) (string, string, loginResponse, error) {
		d, err := h.doctors.GetByEmail(ctx, email)
		return d.ID, d.PasswordHash, loginResponse{Doctor: &d}, err
	})
}

// login answers 404 for an unknown e-mail and 401 for a wrong password.
func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request, role string,
	lookup func(ctx context.Context, email string) (id, hash string, resp loginResponse, err error)) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	id, hash, resp, err := lookup(r.Context(), email)
	if err != nil {
		if storage.IsNotFound(err) {
			httpx.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		storeFailure(w, h.logger, "lookup account", err)
		return
	}
	if err := verifyPassword(hash, req.Password); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, exp, err := h.signer.Sign(id, role, email)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	resp.AccessToken = token
	resp.TokenType = "Bearer"
	resp.ExpiresAt = exp.UTC()
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
