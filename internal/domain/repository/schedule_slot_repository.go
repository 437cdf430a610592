package repository

import (
	"time"

	"go-clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleSlotRepository interface {
	CreateBatch(db *gorm.DB, slots []entity.ScheduleSlot) (int64, error)
	FindKeysInRange(db *gorm.DB, doctorID uuid.UUID, start, end time.Time) ([]entity.SlotKey, error)
	FindByFilter(db *gorm.DB, filter *entity.SlotFilter) ([]entity.ScheduleSlot, error)
	FindByDate(db *gorm.DB, date time.Time, center string) ([]entity.ScheduleSlot, error)
	FindByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.ScheduleSlot, error)
	// FindForBookingLocked returns every mode row of the key and locks them until the transaction ends.
	FindForBookingLocked(db *gorm.DB, key entity.CapacityKey) ([]entity.ScheduleSlot, error)
	DeleteByDoctorAndIDs(db *gorm.DB, doctorID uuid.UUID, ids []uuid.UUID) (int64, error)
}
