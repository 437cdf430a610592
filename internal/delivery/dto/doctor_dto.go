package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	FullName      string `json:"full_name" validate:"required,min=2,max=120"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=30"`
	Center        string `json:"center" validate:"omitempty,max=140"`
	AvailabilityRequest
}

type AvailabilityRequest struct {
	FromSlot          string   `json:"from_slot" validate:"omitempty,slottime"`
	ToSlot            string   `json:"to_slot" validate:"required_with=FromSlot,omitempty,slottime"`
	PatientsPerSlot   int      `json:"patients_per_slot" validate:"gte=0,lte=100"`
	ModeOfAppointment string   `json:"mode_of_appointment" validate:"omitempty,oneof=In-Person Call"`
	Days              []string `json:"days" validate:"omitempty,unique,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

// Response DTOs

type DoctorResponse struct {
	ID                uuid.UUID `json:"id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email,omitempty"`
	ContactNumber     string    `json:"contact_number,omitempty"`
	Center            string    `json:"center,omitempty"`
	FromSlot          string    `json:"from_slot"`
	ToSlot            string    `json:"to_slot"`
	PatientsPerSlot   int       `json:"patients_per_slot"`
	ModeOfAppointment string    `json:"mode_of_appointment,omitempty"`
	Days              []string  `json:"days"`
	FromDate          string    `json:"from_date,omitempty"`
	ToDate            string    `json:"to_date,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
