package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type GenerateSlotsRequest struct {
	SkipProcessed bool   `json:"skip_processed"`
	BatchSize     int    `json:"batch_size" validate:"omitempty,min=1,max=1000"`
	StartDate     string `json:"start_date" validate:"omitempty,datetime=2006-01-02"` // Format: YYYY-MM-DD
	EndDate       string `json:"end_date" validate:"required_with=StartDate,omitempty,datetime=2006-01-02"`
}

type DeleteSlotsRequest struct {
	SlotIDs []uuid.UUID `json:"slot_ids" validate:"required,min=1,max=500"`
}

// Response DTOs

type DoctorGenerationError struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Doctor   string    `json:"doctor"`
	Error    string    `json:"error"`
}

type GenerationSummary struct {
	WindowStart      string                  `json:"window_start"`
	WindowEnd        string                  `json:"window_end"`
	DoctorsTotal     int                     `json:"doctors_total"`
	DoctorsProcessed int                     `json:"doctors_processed"`
	DoctorsSkipped   int                     `json:"doctors_skipped"`
	SlotsAdded       int                     `json:"slots_added"`
	Errors           []DoctorGenerationError `json:"errors"`
}

type GenerationRunResponse struct {
	Status     string             `json:"status"`
	Actor      string             `json:"actor"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Summary    *GenerationSummary `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type ScheduleSlotResponse struct {
	ID       uuid.UUID `json:"id"`
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Day      string    `json:"day"`
	Slot     string    `json:"slot"`
	Mode     string    `json:"mode"`
	Patients int       `json:"patients"`
}

type ScheduleSlotListResponse struct {
	Slots []ScheduleSlotResponse `json:"slots"`
	Total int                    `json:"total"`
}

type SlotDeletionError struct {
	DoctorID *uuid.UUID `json:"doctor_id,omitempty"`
	SlotID   *uuid.UUID `json:"slot_id,omitempty"`
	Error    string     `json:"error"`
}

type DeleteSlotsResponse struct {
	Success bool                `json:"success"`
	Deleted int                 `json:"deleted"`
	Message string              `json:"message"`
	Errors  []SlotDeletionError `json:"errors,omitempty"`
}
