package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/delivery/http/middleware"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/usecase"
	"go-clinic-scheduler/pkg/response"
	"go-clinic-scheduler/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
	location            *time.Location
	now                 func() time.Time
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator, location *time.Location) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
		location:            location,
		now:                 time.Now,
	}
}

func (h *AvailabilityHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := parseUUIDVar(r, "doctorId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	fromDate, err := parseDateQuery(r, "from_date")
	if err != nil {
		writeUsecaseError(w, err, "")
		return
	}

	slots, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), doctorID, fromDate)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

// GetAvailableDoctors lists bookable slots of every doctor on ?date (default today), optionally for one ?center.
func (h *AvailabilityHandler) GetAvailableDoctors(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeUsecaseError(w, err, "")
		return
	}
	if date == nil {
		today := entity.DateOf(h.now().In(h.location))
		date = &today
	}

	slots, err := h.availabilityUsecase.GetAvailableDoctors(r.Context(), r.URL.Query().Get("center"), *date)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get available doctors")
		return
	}

	response.Success(w, http.StatusOK, "Available doctors retrieved successfully", slots)
}

func (h *AvailabilityHandler) BookConsultation(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.availabilityUsecase.BookConsultation(r.Context(), middleware.ActorFromContext(r.Context()), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to book consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation booked successfully", consultation)
}
