package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/domain/repository"
	"go-clinic-scheduler/internal/infrastructure/database"
	"go-clinic-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNoSlotsSelected = errors.New("no slots selected")

type SlotDeletionUsecase interface {
	DeleteSlot(ctx context.Context, actor string, doctorID, slotID uuid.UUID) error
	DeleteSlots(ctx context.Context, actor string, slotIDs []uuid.UUID) (*dto.DeleteSlotsResponse, error)
}

type slotDeletionUsecase struct {
	tx           database.TxManager
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	slotRepo     repository.ScheduleSlotRepository
	auditService service.AuditService
}

func NewSlotDeletionUsecase(
	tx database.TxManager,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	slotRepo repository.ScheduleSlotRepository,
	auditService service.AuditService,
) SlotDeletionUsecase {
	return &slotDeletionUsecase{
		tx:           tx,
		log:          log,
		doctorRepo:   doctorRepo,
		slotRepo:     slotRepo,
		auditService: auditService,
	}
}

// DeleteSlot removes one slot. It fails with ErrSlotNotFound unless the slot belongs to doctorID.
func (u *slotDeletionUsecase) DeleteSlot(ctx context.Context, actor string, doctorID, slotID uuid.UUID) error {
	db := u.tx.Conn(ctx)

	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	slots, err := u.slotRepo.FindByIDs(db, []uuid.UUID{slotID})
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return err
	}
	if len(slots) == 0 || slots[0].DoctorID != doctorID {
		return ErrSlotNotFound
	}

	deleted, err := u.deleteForDoctor(ctx, actor, doctorID, slots)
	if err != nil {
		u.log.Warnf("Failed to delete slot %s: %+v", slotID, err)
		return err
	}
	if deleted == 0 {
		// Removed concurrently between lookup and delete.
		return ErrSlotNotFound
	}
	return nil
}

// DeleteSlots removes slots in bulk with one transaction per owning doctor. Unknown ids and
// per-doctor failures are reported in the response without stopping other doctors' deletions.
func (u *slotDeletionUsecase) DeleteSlots(ctx context.Context, actor string, slotIDs []uuid.UUID) (*dto.DeleteSlotsResponse, error) {
	if len(slotIDs) == 0 {
		return nil, ErrNoSlotsSelected
	}

	slots, err := u.slotRepo.FindByIDs(u.tx.Conn(ctx), slotIDs)
	if err != nil {
		u.log.Warnf("Failed to find slots: %+v", err)
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrSlotNotFound
	}

	response := &dto.DeleteSlotsResponse{}

	found := make(map[uuid.UUID]bool, len(slots))
	var doctorOrder []uuid.UUID
	byDoctor := make(map[uuid.UUID][]entity.ScheduleSlot)
	for _, slot := range slots {
		found[slot.ID] = true
		if _, ok := byDoctor[slot.DoctorID]; !ok {
			doctorOrder = append(doctorOrder, slot.DoctorID)
		}
		byDoctor[slot.DoctorID] = append(byDoctor[slot.DoctorID], slot)
	}

	for _, id := range slotIDs {
		if !found[id] {
			slotID := id
			response.Errors = append(response.Errors, dto.SlotDeletionError{
				SlotID: &slotID,
				Error:  ErrSlotNotFound.Error(),
			})
		}
	}

	for _, doctorID := range doctorOrder {
		deleted, err := u.deleteForDoctor(ctx, actor, doctorID, byDoctor[doctorID])
		if err != nil {
			id := doctorID
			message := entity.Truncate(err.Error(), entity.MaxErrorMessageLength)
			u.log.Warnf("Failed to delete slots for doctor %s: %s", doctorID, message)
			response.Errors = append(response.Errors, dto.SlotDeletionError{
				DoctorID: &id,
				Error:    message,
			})
			continue
		}
		response.Deleted += deleted
	}

	response.Success = len(response.Errors) == 0
	response.Message = fmt.Sprintf("Successfully deleted %d slot(s)", response.Deleted)
	if !response.Success {
		response.Message = fmt.Sprintf("Deleted %d slot(s) with %d error(s)", response.Deleted, len(response.Errors))
	}
	return response, nil
}

func (u *slotDeletionUsecase) deleteForDoctor(ctx context.Context, actor string, doctorID uuid.UUID, slots []entity.ScheduleSlot) (int, error) {
	ids := make([]uuid.UUID, len(slots))
	removed := make([]interface{}, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
		removed[i] = map[string]interface{}{
			"id":   slot.ID.String(),
			"date": entity.FormatDate(slot.Date),
			"slot": string(slot.Slot),
			"mode": string(slot.Mode),
		}
	}

	var deleted int64
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = u.slotRepo.DeleteByDoctorAndIDs(tx, doctorID, ids)
		return err
	})
	if err != nil {
		return 0, err
	}

	// Written after commit; a failed insert inside the transaction would abort the deletion.
	if err := u.auditService.Log(ctx, u.tx.Conn(ctx), actor, entity.AuditActionSlotDelete, "Schedule slots deleted", entity.JSON{
		"doctor_id": doctorID.String(),
		"slots":     removed,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return int(deleted), nil
}
