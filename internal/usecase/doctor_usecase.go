package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-clinic-scheduler/internal/converter"
	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/domain/repository"
	"go-clinic-scheduler/internal/infrastructure/database"
	"go-clinic-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, actor string, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateAvailability(ctx context.Context, actor string, doctorID uuid.UUID, req *dto.AvailabilityRequest) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	tx           database.TxManager
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
}

func NewDoctorUsecase(
	tx database.TxManager,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		tx:           tx,
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

// CreateDoctor stores a new doctor. A name already in use gets a "-N" suffix.
func (u *doctorUsecase) CreateDoctor(ctx context.Context, actor string, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor := &entity.Doctor{
		ID:            uuid.New(),
		FullName:      req.FullName,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Center:        req.Center,
	}
	if err := applyAvailability(doctor, &req.AvailabilityRequest); err != nil {
		return nil, err
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.doctorRepo.CountByNamePrefix(tx, req.FullName)
		if err != nil {
			return err
		}
		if existing > 0 {
			doctor.FullName = fmt.Sprintf("%s-%d", req.FullName, existing+1)
			u.log.Infof("Changed doctor name to %q as %q already exists", doctor.FullName, req.FullName)
		}

		return u.doctorRepo.Create(tx, doctor)
	})
	if err != nil {
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := u.auditService.Log(ctx, u.tx.Conn(ctx), actor, entity.AuditActionDoctorCreate, "Doctor created", entity.JSON{
		"doctor_id": doctor.ID.String(),
		"full_name": doctor.FullName,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.tx.Conn(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

// UpdateAvailability replaces the doctor's generation settings. Existing slots are untouched;
// new settings apply from the next generation run.
func (u *doctorUsecase) UpdateAvailability(ctx context.Context, actor string, doctorID uuid.UUID, req *dto.AvailabilityRequest) (*dto.DoctorResponse, error) {
	var doctor *entity.Doctor
	var old *dto.DoctorResponse

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		doctor, err = u.doctorRepo.FindByID(tx, doctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		old = converter.DoctorToResponse(doctor)
		if err := applyAvailability(doctor, req); err != nil {
			return err
		}
		return u.doctorRepo.UpdateAvailability(tx, doctor)
	})
	if err != nil {
		if !errors.Is(err, ErrDoctorNotFound) {
			u.log.Warnf("Failed to update availability for doctor %s: %+v", doctorID, err)
		}
		return nil, err
	}

	updated := converter.DoctorToResponse(doctor)
	if err := u.auditService.Log(ctx, u.tx.Conn(ctx), actor, entity.AuditActionAvailabilityUpdate, "Doctor availability updated", entity.JSON{
		"doctor_id": doctor.ID.String(),
		"old_value": availabilitySnapshot(old),
		"new_value": availabilitySnapshot(updated),
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return updated, nil
}

func applyAvailability(doctor *entity.Doctor, req *dto.AvailabilityRequest) error {
	doctor.FromSlot = ""
	doctor.ToSlot = ""
	if req.FromSlot != "" {
		from, _, err := entity.ParseSlotTime(req.FromSlot)
		if err != nil {
			return err
		}
		to, _, err := entity.ParseSlotTime(req.ToSlot)
		if err != nil {
			return err
		}
		doctor.FromSlot, doctor.ToSlot = string(from), string(to)
		if _, _, err := doctor.SlotRange(); err != nil {
			return err
		}
	}

	doctor.PatientsPerSlot = req.PatientsPerSlot
	doctor.ModeOfAppointment = entity.AppointmentMode(req.ModeOfAppointment)

	days := make([]entity.Weekday, len(req.Days))
	for i, day := range req.Days {
		days[i] = entity.Weekday(day)
	}
	doctor.SetEnabledDays(days)
	return nil
}

func availabilitySnapshot(d *dto.DoctorResponse) map[string]interface{} {
	return map[string]interface{}{
		"from_slot":         d.FromSlot,
		"to_slot":           d.ToSlot,
		"patients_per_slot": d.PatientsPerSlot,
		"days":              d.Days,
	}
}
