package repository

import (
	"time"

	"go-clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *entity.Consultation) error
	// CountFrom counts consultations per (doctor, date, slot) for one doctor on or after from.
	CountFrom(db *gorm.DB, doctorID uuid.UUID, from time.Time) (map[entity.CapacityKey]int, error)
	// CountOnDate counts consultations per (doctor, date, slot) for every doctor on date.
	CountOnDate(db *gorm.DB, date time.Time) (map[entity.CapacityKey]int, error)
	CountForSlot(db *gorm.DB, key entity.CapacityKey) (int64, error)
}
