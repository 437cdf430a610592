package converter

import (
	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
)

// ScheduleSlotToResponse converts a ScheduleSlot entity to ScheduleSlotResponse DTO
func ScheduleSlotToResponse(slot *entity.ScheduleSlot) *dto.ScheduleSlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.ScheduleSlotResponse{
		ID:       slot.ID,
		DoctorID: slot.DoctorID,
		Date:     entity.FormatDate(slot.Date),
		Day:      string(slot.Day),
		Slot:     string(slot.Slot),
		Mode:     string(slot.Mode),
		Patients: slot.Patients,
	}
}

// ScheduleSlotsToResponses converts a slice of ScheduleSlot entities to slice of ScheduleSlotResponse DTOs
func ScheduleSlotsToResponses(slots []entity.ScheduleSlot) []dto.ScheduleSlotResponse {
	responses := make([]dto.ScheduleSlotResponse, len(slots))
	for i := range slots {
		responses[i] = *ScheduleSlotToResponse(&slots[i])
	}
	return responses
}

func AvailableSlotsToResponses(slots []entity.AvailableSlot) []dto.AvailableSlotResponse {
	responses := make([]dto.AvailableSlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.AvailableSlotResponse{
			SlotID:            slot.SlotID,
			DoctorID:          slot.DoctorID,
			Doctor:            slot.DoctorName,
			Date:              entity.FormatDate(slot.Date),
			Slot:              string(slot.Slot),
			Mode:              string(slot.Mode),
			Capacity:          slot.Capacity,
			CapacityRemaining: slot.CapacityRemaining,
		}
	}
	return responses
}

func ConsultationToResponse(c *entity.Consultation) *dto.ConsultationResponse {
	if c == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:        c.ID,
		DoctorID:  c.DoctorID,
		Patient:   c.Patient,
		Center:    c.Center,
		Date:      entity.FormatDate(c.Date),
		Slot:      string(c.Slot),
		Mode:      string(c.Mode),
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}
