package handler

import (
	"errors"
	"net/http"
	"time"

	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/usecase"
	"go-clinic-scheduler/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// parseDateQuery reads an optional YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, name string) (*time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil, nil
	}
	date, err := entity.ParseDate(value)
	if err != nil {
		return nil, usecase.ErrInvalidDate
	}
	return &date, nil
}

func parseUUIDVar(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// writeUsecaseError maps the usecase sentinel errors shared by several handlers.
func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrSlotNotFound):
		response.NotFound(w, "Schedule slot not found")
	case errors.Is(err, usecase.ErrSlotFull):
		response.Conflict(w, "Schedule slot is fully booked")
	case errors.Is(err, usecase.ErrSlotInPast):
		response.BadRequest(w, "Cannot book a slot in the past")
	case errors.Is(err, usecase.ErrInvalidDate):
		response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
	case errors.Is(err, usecase.ErrInvalidDateRange):
		response.BadRequest(w, "End date must not be before start date")
	case errors.Is(err, usecase.ErrNoSlotsSelected):
		response.BadRequest(w, "Please select at least one slot")
	case errors.Is(err, entity.ErrInvalidSlotTime), errors.Is(err, entity.ErrInvalidSlotRange):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
