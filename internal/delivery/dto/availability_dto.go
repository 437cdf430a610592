package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateConsultationRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	Patient  string    `json:"patient" validate:"required,min=2,max=140"`
	Center   string    `json:"center" validate:"omitempty,max=140"`
	Date     string    `json:"date" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	Slot     string    `json:"slot" validate:"required,slottime"`
	Mode     string    `json:"mode" validate:"required,oneof=In-Person Call"`
}

// Response DTOs

type AvailableSlotResponse struct {
	SlotID            uuid.UUID `json:"slot_id"`
	DoctorID          uuid.UUID `json:"doctor_id"`
	Doctor            string    `json:"doctor,omitempty"`
	Date              string    `json:"date"`
	Slot              string    `json:"slot"`
	Mode              string    `json:"mode"`
	Capacity          int       `json:"capacity"`
	CapacityRemaining int       `json:"capacity_remaining"`
}

type AvailableSlotListResponse struct {
	Slots []AvailableSlotResponse `json:"slots"`
	Total int                     `json:"total"`
}

type ConsultationResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Patient   string    `json:"patient"`
	Center    string    `json:"center,omitempty"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
