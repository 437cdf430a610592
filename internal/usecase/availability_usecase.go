package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

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

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrSlotNotFound     = errors.New("schedule slot not found")
	ErrSlotFull         = errors.New("schedule slot has no remaining capacity")
	ErrSlotInPast       = errors.New("cannot book a slot in the past")
	ErrInvalidDate      = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("end date is before start date")
)

type AvailabilityUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, fromDate *time.Time) (*dto.AvailableSlotListResponse, error)
	GetAvailableDoctors(ctx context.Context, center string, date time.Time) (*dto.AvailableSlotListResponse, error)
	GetDoctorScheduleSlots(ctx context.Context, doctorID uuid.UUID, startDate, endDate *time.Time) (*dto.ScheduleSlotListResponse, error)
	BookConsultation(ctx context.Context, actor string, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
}

type availabilityUsecase struct {
	tx               database.TxManager
	log              *logrus.Logger
	doctorRepo       repository.DoctorRepository
	slotRepo         repository.ScheduleSlotRepository
	consultationRepo repository.ConsultationRepository
	auditService     service.AuditService
	location         *time.Location
	now              func() time.Time
}

func NewAvailabilityUsecase(
	tx database.TxManager,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	slotRepo repository.ScheduleSlotRepository,
	consultationRepo repository.ConsultationRepository,
	auditService service.AuditService,
	location *time.Location,
) AvailabilityUsecase {
	return &availabilityUsecase{
		tx:               tx,
		log:              log,
		doctorRepo:       doctorRepo,
		slotRepo:         slotRepo,
		consultationRepo: consultationRepo,
		auditService:     auditService,
		location:         location,
		now:              time.Now,
	}
}

func (u *availabilityUsecase) today() time.Time {
	return entity.DateOf(u.now().In(u.location))
}

// GetAvailableSlots lists the doctor's slots on or after fromDate (default today) that still have
// capacity once existing consultations on the same date and slot are subtracted.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, fromDate *time.Time) (*dto.AvailableSlotListResponse, error) {
	db := u.tx.Conn(ctx)

	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	from := u.today()
	if fromDate != nil {
		from = entity.DateOf(*fromDate)
	}

	slots, err := u.slotRepo.FindByFilter(db, &entity.SlotFilter{DoctorID: doctorID, StartDate: &from})
	if err != nil {
		u.log.Warnf("Failed to find slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	consumed, err := u.consultationRepo.CountFrom(db, doctorID, from)
	if err != nil {
		u.log.Warnf("Failed to count consultations for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	available := RemainingCapacity(slots, consumed, map[uuid.UUID]string{doctor.ID: doctor.FullName})
	return &dto.AvailableSlotListResponse{
		Slots: converter.AvailableSlotsToResponses(available),
		Total: len(available),
	}, nil
}

// GetAvailableDoctors lists, for one date, every slot with remaining capacity across all doctors,
// restricted to doctors of center when center is set.
func (u *availabilityUsecase) GetAvailableDoctors(ctx context.Context, center string, date time.Time) (*dto.AvailableSlotListResponse, error) {
	db := u.tx.Conn(ctx)
	day := entity.DateOf(date)

	slots, err := u.slotRepo.FindByDate(db, day, center)
	if err != nil {
		u.log.Warnf("Failed to find slots on %s: %+v", entity.FormatDate(day), err)
		return nil, err
	}

	consumed, err := u.consultationRepo.CountOnDate(db, day)
	if err != nil {
		u.log.Warnf("Failed to count consultations on %s: %+v", entity.FormatDate(day), err)
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	for _, slot := range slots {
		if slot.Doctor != nil {
			names[slot.DoctorID] = slot.Doctor.FullName
		}
	}

	available := RemainingCapacity(slots, consumed, names)
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].DoctorName < available[j].DoctorName
	})

	return &dto.AvailableSlotListResponse{
		Slots: converter.AvailableSlotsToResponses(available),
		Total: len(available),
	}, nil
}

func (u *availabilityUsecase) GetDoctorScheduleSlots(ctx context.Context, doctorID uuid.UUID, startDate, endDate *time.Time) (*dto.ScheduleSlotListResponse, error) {
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, ErrInvalidDateRange
	}

	db := u.tx.Conn(ctx)
	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slots, err := u.slotRepo.FindByFilter(db, &entity.SlotFilter{DoctorID: doctorID, StartDate: startDate, EndDate: endDate})
	if err != nil {
		u.log.Warnf("Failed to find slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	sortSlots(slots)

	return &dto.ScheduleSlotListResponse{
		Slots: converter.ScheduleSlotsToResponses(slots),
		Total: len(slots),
	}, nil
}

// BookConsultation books a consultation into an existing slot. All mode rows of the
// (doctor, date, slot) are locked, since consultations of either mode share the count.
func (u *availabilityUsecase) BookConsultation(ctx context.Context, actor string, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	date, err := entity.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if date.Before(u.today()) {
		return nil, ErrSlotInPast
	}
	slotTime, _, err := entity.ParseSlotTime(req.Slot)
	if err != nil {
		return nil, err
	}
	mode := entity.AppointmentMode(req.Mode)
	key := entity.CapacityKey{DoctorID: req.DoctorID, Date: entity.FormatDate(date), Slot: slotTime}

	consultation := &entity.Consultation{
		ID:       uuid.New(),
		DoctorID: req.DoctorID,
		Patient:  req.Patient,
		Center:   req.Center,
		Date:     date,
		Slot:     slotTime,
		Mode:     mode,
		Status:   entity.ConsultationStatusScheduled,
	}

	var slotID uuid.UUID
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		slots, err := u.slotRepo.FindForBookingLocked(tx, key)
		if err != nil {
			return err
		}

		var target *entity.ScheduleSlot
		for i := range slots {
			if slots[i].Mode == mode {
				target = &slots[i]
				break
			}
		}
		if target == nil {
			return ErrSlotNotFound
		}

		booked, err := u.consultationRepo.CountForSlot(tx, key)
		if err != nil {
			return err
		}
		if int(booked) >= target.Patients {
			return ErrSlotFull
		}

		slotID = target.ID
		return u.consultationRepo.Create(tx, consultation)
	})
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) && !errors.Is(err, ErrSlotFull) {
			u.log.Warnf("Failed to book consultation: %+v", err)
		}
		return nil, err
	}

	if err := u.auditService.Log(ctx, u.tx.Conn(ctx), actor, entity.AuditActionConsultCreate, "Consultation booked", entity.JSON{
		"consultation_id": consultation.ID.String(),
		"slot_id":         slotID.String(),
		"patient":         consultation.Patient,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Consultation booked: id=%s, doctor=%s, date=%s, slot=%s, mode=%s", consultation.ID, req.DoctorID, key.Date, slotTime, mode)
	return converter.ConsultationToResponse(consultation), nil
}

// RemainingCapacity subtracts consumed capacity from each slot and drops slots with none left.
// Consultations are matched on (doctor, date, slot) regardless of mode.
func RemainingCapacity(slots []entity.ScheduleSlot, consumed map[entity.CapacityKey]int, doctorNames map[uuid.UUID]string) []entity.AvailableSlot {
	sortSlots(slots)

	available := make([]entity.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		remaining := slot.Patients - consumed[slot.CapacityKey()]
		if remaining <= 0 {
			continue
		}
		available = append(available, entity.AvailableSlot{
			SlotID:            slot.ID,
			DoctorID:          slot.DoctorID,
			DoctorName:        doctorNames[slot.DoctorID],
			Date:              slot.Date,
			Slot:              slot.Slot,
			Mode:              slot.Mode,
			Capacity:          slot.Patients,
			CapacityRemaining: remaining,
		})
	}
	return available
}

// sortSlots orders by date, slot time, then In-Person before Call.
func sortSlots(slots []entity.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Slot != b.Slot {
			return a.Slot.Index() < b.Slot.Index()
		}
		return a.Mode == entity.ModeInPerson && b.Mode != entity.ModeInPerson
	})
}
