package repository

import (
	"time"

	"go-clinic-scheduler/internal/domain/entity"
	domainRepo "go-clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Create(consultation).Error
}

type capacityCountRow struct {
	DoctorID uuid.UUID
	Date     time.Time
	Slot     entity.SlotTime
	Booked   int
}

func (r *consultationRepository) CountFrom(db *gorm.DB, doctorID uuid.UUID, from time.Time) (map[entity.CapacityKey]int, error) {
	var rows []capacityCountRow
	err := db.Model(&entity.Consultation{}).
		Select("doctor_id, date, slot, COUNT(*) AS booked").
		Where("doctor_id = ? AND date >= ?", doctorID, entity.FormatDate(from)).
		Group("doctor_id, date, slot").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCapacityMap(rows), nil
}

func (r *consultationRepository) CountOnDate(db *gorm.DB, date time.Time) (map[entity.CapacityKey]int, error) {
	var rows []capacityCountRow
	err := db.Model(&entity.Consultation{}).
		Select("doctor_id, date, slot, COUNT(*) AS booked").
		Where("date = ?", entity.FormatDate(date)).
		Group("doctor_id, date, slot").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCapacityMap(rows), nil
}

func (r *consultationRepository) CountForSlot(db *gorm.DB, key entity.CapacityKey) (int64, error) {
	var count int64
	err := db.Model(&entity.Consultation{}).
		Where("doctor_id = ? AND date = ? AND slot = ?", key.DoctorID, key.Date, key.Slot).
		Count(&count).Error
	return count, err
}

func toCapacityMap(rows []capacityCountRow) map[entity.CapacityKey]int {
	counts := make(map[entity.CapacityKey]int, len(rows))
	for _, row := range rows {
		key := entity.CapacityKey{DoctorID: row.DoctorID, Date: entity.FormatDate(row.Date), Slot: row.Slot}
		counts[key] += row.Booked
	}
	return counts
}
