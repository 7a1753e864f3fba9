package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Patient struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	Gender        Gender    `json:"gender,omitempty"`
	StreetAddress string    `json:"street_address,omitempty"`
	CityID        *string   `json:"city_id,omitempty"`
	StateID       *string   `json:"state_id,omitempty"`
	PinCode       string    `json:"pin_code,omitempty"`
	CreatedOn     time.Time `json:"created_on"`
}

// PatientUpdate carries the profile fields PUT may change; nil means keep.
type PatientUpdate struct {
	Name          *string
	Gender        *Gender
	StreetAddress *string
	CityID        *string
	StateID       *string
	PinCode       *string
}

type Doctor struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Gender         Gender    `json:"gender,omitempty"`
	Enabled        Flag      `json:"is_enable"`
	RegisteredOn   time.Time `json:"registered_on"`
}
