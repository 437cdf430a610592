package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/delivery/http/middleware"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/usecase"
	"go-clinic-scheduler/internal/worker"
	"go-clinic-scheduler/pkg/response"
	"go-clinic-scheduler/pkg/validator"
)

// SlotGenerationRunner starts generation runs in the background.
type SlotGenerationRunner interface {
	Trigger(ctx context.Context, params usecase.GenerateParams) error
	LastRun() *dto.GenerationRunResponse
}

type ScheduleHandler struct {
	runner              SlotGenerationRunner
	deletionUsecase     usecase.SlotDeletionUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
	location            *time.Location
	windowMonths        int
	batchSize           int
	now                 func() time.Time
}

func NewScheduleHandler(
	runner SlotGenerationRunner,
	deletionUsecase usecase.SlotDeletionUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
	location *time.Location,
	windowMonths int,
	batchSize int,
) *ScheduleHandler {
	return &ScheduleHandler{
		runner:              runner,
		deletionUsecase:     deletionUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
		location:            location,
		windowMonths:        windowMonths,
		batchSize:           batchSize,
		now:                 time.Now,
	}
}

// GenerateSlots queues a generation run. Without explicit dates the rolling window for today is used.
func (h *ScheduleHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	window, err := h.requestWindow(&req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = h.batchSize
	}

	params := usecase.GenerateParams{
		Window:        window,
		SkipProcessed: req.SkipProcessed,
		BatchSize:     batchSize,
		Actor:         middleware.ActorFromContext(r.Context()),
	}
	if err := h.runner.Trigger(r.Context(), params); err != nil {
		if errors.Is(err, worker.ErrJobAlreadyRunning) {
			response.Conflict(w, "Schedule generation is already running")
			return
		}
		response.InternalServerError(w, "Failed to start schedule generation")
		return
	}

	response.Accepted(w, "Schedule generation started", map[string]string{
		"window_start": entity.FormatDate(window.Start),
		"window_end":   entity.FormatDate(window.End),
	})
}

func (h *ScheduleHandler) GetGenerationStatus(w http.ResponseWriter, r *http.Request) {
	run := h.runner.LastRun()
	if run == nil {
		response.NotFound(w, "No schedule generation run recorded")
		return
	}

	response.Success(w, http.StatusOK, "Schedule generation status retrieved successfully", run)
}

func (h *ScheduleHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := parseUUIDVar(r, "doctorId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	startDate, err := parseDateQuery(r, "start_date")
	if err != nil {
		writeUsecaseError(w, err, "")
		return
	}
	endDate, err := parseDateQuery(r, "end_date")
	if err != nil {
		writeUsecaseError(w, err, "")
		return
	}

	slots, err := h.availabilityUsecase.GetDoctorScheduleSlots(r.Context(), doctorID, startDate, endDate)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get schedule slots")
		return
	}

	response.Success(w, http.StatusOK, "Schedule slots retrieved successfully", slots)
}

func (h *ScheduleHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	doctorID, err := parseUUIDVar(r, "doctorId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}
	slotID, err := parseUUIDVar(r, "slotId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid slot ID", nil)
		return
	}

	err = h.deletionUsecase.DeleteSlot(r.Context(), middleware.ActorFromContext(r.Context()), doctorID, slotID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to delete schedule slot")
		return
	}

	response.Success(w, http.StatusOK, "Schedule slot deleted successfully", nil)
}

func (h *ScheduleHandler) DeleteSlots(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.deletionUsecase.DeleteSlots(r.Context(), middleware.ActorFromContext(r.Context()), req.SlotIDs)
	if err != nil {
		writeUsecaseError(w, err, "Failed to delete schedule slots")
		return
	}

	if !result.Success {
		response.JSON(w, http.StatusMultiStatus, response.Response{
			Success: false,
			Message: result.Message,
			Data:    result,
		})
		return
	}
	response.Success(w, http.StatusOK, result.Message, result)
}

func (h *ScheduleHandler) requestWindow(req *dto.GenerateSlotsRequest) (entity.GenerationWindow, error) {
	if req.StartDate == "" {
		if req.EndDate != "" {
			return entity.GenerationWindow{}, errors.New("start_date is required when end_date is set")
		}
		return entity.WindowFor(h.now().In(h.location), h.windowMonths), nil
	}

	start, err := entity.ParseDate(req.StartDate)
	if err != nil {
		return entity.GenerationWindow{}, usecase.ErrInvalidDate
	}
	end, err := entity.ParseDate(req.EndDate)
	if err != nil {
		return entity.GenerationWindow{}, usecase.ErrInvalidDate
	}
	return entity.NewWindow(start, end)
}
