package repository

import (
	"time"

	"go-clinic-scheduler/internal/domain/entity"
	domainRepo "go-clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Insert chunk size; one doctor's three-month grid is at most ~9000 rows.
const slotInsertBatchSize = 500

// slotOrder sorts by date, then clock time, then In-Person before Call.
const slotOrder = "schedule_slots.date ASC, to_timestamp(schedule_slots.slot, 'HH12:MI AM')::time ASC, schedule_slots.mode DESC"

type scheduleSlotRepository struct{}

func NewScheduleSlotRepository() domainRepo.ScheduleSlotRepository {
	return &scheduleSlotRepository{}
}

// CreateBatch inserts slots, ignoring rows whose (doctor, date, slot, mode) key already exists.
// Returns the number of rows actually inserted. The conflict target must match the
// uq_schedule_slot_key constraint created by the init migration.
func (r *scheduleSlotRepository) CreateBatch(db *gorm.DB, slots []entity.ScheduleSlot) (int64, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "date"}, {Name: "slot"}, {Name: "mode"}},
		DoNothing: true,
	}).CreateInBatches(&slots, slotInsertBatchSize)
	return result.RowsAffected, result.Error
}

type slotKeyRow struct {
	Date time.Time
	Slot entity.SlotTime
	Mode entity.AppointmentMode
}

// FindKeysInRange projects a doctor's existing slots inside [start, end] to their keys.
func (r *scheduleSlotRepository) FindKeysInRange(db *gorm.DB, doctorID uuid.UUID, start, end time.Time) ([]entity.SlotKey, error) {
	var rows []slotKeyRow
	err := db.Model(&entity.ScheduleSlot{}).
		Select("date, slot, mode").
		Where("doctor_id = ? AND date >= ? AND date <= ?", doctorID, entity.FormatDate(start), entity.FormatDate(end)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	keys := make([]entity.SlotKey, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, entity.SlotKey{Date: entity.FormatDate(row.Date), Slot: row.Slot, Mode: row.Mode})
	}
	return keys, nil
}

func (r *scheduleSlotRepository) FindByFilter(db *gorm.DB, filter *entity.SlotFilter) ([]entity.ScheduleSlot, error) {
	var slots []entity.ScheduleSlot
	query := db.Where("schedule_slots.doctor_id = ?", filter.DoctorID)

	if filter.StartDate != nil {
		query = query.Where("schedule_slots.date >= ?", entity.FormatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("schedule_slots.date <= ?", entity.FormatDate(*filter.EndDate))
	}

	err := query.Order(slotOrder).Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// FindByDate returns every slot on date, optionally restricted to doctors of one center.
func (r *scheduleSlotRepository) FindByDate(db *gorm.DB, date time.Time, center string) ([]entity.ScheduleSlot, error) {
	var slots []entity.ScheduleSlot
	query := db.
		Joins("Doctor").
		Where("schedule_slots.date = ?", entity.FormatDate(date))

	if center != "" {
		query = query.Where(`"Doctor"."center" = ?`, center)
	}

	err := query.Order(`"Doctor"."full_name" ASC, ` + slotOrder).Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *scheduleSlotRepository) FindByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.ScheduleSlot, error) {
	var slots []entity.ScheduleSlot
	if len(ids) == 0 {
		return slots, nil
	}
	err := db.Where("id IN ?", ids).Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// FindForBookingLocked loads every mode row of the (doctor, date, slot) key and holds row locks
// on them until the surrounding transaction ends.
func (r *scheduleSlotRepository) FindForBookingLocked(db *gorm.DB, key entity.CapacityKey) ([]entity.ScheduleSlot, error) {
	var slots []entity.ScheduleSlot
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_id = ? AND date = ? AND slot = ?", key.DoctorID, key.Date, key.Slot).
		Order("mode DESC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *scheduleSlotRepository) DeleteByDoctorAndIDs(db *gorm.DB, doctorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result := db.Where("doctor_id = ? AND id IN ?", doctorID, ids).Delete(&entity.ScheduleSlot{})
	return result.RowsAffected, result.Error
}
