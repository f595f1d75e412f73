package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle owns at most one loan. Deleting it removes the loan and its payments.
type Vehicle struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RegistrationNo string    `json:"registration_no" db:"registration_no"`
	Model          string    `json:"model" db:"model"`
	OwnerEmail     string    `json:"owner_email" db:"owner_email"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type CreateVehicleRequest struct {
	RegistrationNo string `json:"registration_no" validate:"required,max=32"`
	Model          string `json:"model" validate:"required,max=128"`
	OwnerEmail     string `json:"owner_email" validate:"omitempty,email"`
}
