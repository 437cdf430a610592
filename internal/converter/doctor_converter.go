package converter

import (
	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	enabled := doctor.EnabledDays()
	days := make([]string, 0, len(enabled))
	for _, day := range entity.AllWeekdays {
		if enabled[day] {
			days = append(days, string(day))
		}
	}

	response := &dto.DoctorResponse{
		ID:                doctor.ID,
		FullName:          doctor.FullName,
		Email:             doctor.Email,
		ContactNumber:     doctor.ContactNumber,
		Center:            doctor.Center,
		FromSlot:          doctor.FromSlot,
		ToSlot:            doctor.ToSlot,
		PatientsPerSlot:   doctor.PatientsPerSlot,
		ModeOfAppointment: string(doctor.ModeOfAppointment),
		Days:              days,
		CreatedAt:         doctor.CreatedAt,
	}
	if doctor.FromDate != nil {
		response.FromDate = entity.FormatDate(*doctor.FromDate)
	}
	if doctor.ToDate != nil {
		response.ToDate = entity.FormatDate(*doctor.ToDate)
	}

	return response
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
