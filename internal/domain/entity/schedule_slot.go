package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleSlot is one bookable (doctor, date, slot, mode) unit.
// Capacity (Patients) is fixed at creation time.
type ScheduleSlot struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_schedule_slot_key,priority:1" json:"doctor_id"`
	Date      time.Time       `gorm:"type:date;not null;uniqueIndex:uq_schedule_slot_key,priority:2;index" json:"date"`
	Day       Weekday         `gorm:"type:varchar(10);not null" json:"day"`
	Slot      SlotTime        `gorm:"type:varchar(10);not null;uniqueIndex:uq_schedule_slot_key,priority:3" json:"slot"`
	Mode      AppointmentMode `gorm:"type:varchar(20);not null;uniqueIndex:uq_schedule_slot_key,priority:4" json:"mode"`
	Patients  int             `gorm:"not null" json:"patients"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}

// SlotKey identifies a slot within one doctor's schedule.
type SlotKey struct {
	Date string
	Slot SlotTime
	Mode AppointmentMode
}

// CapacityKey is the part of a slot consultations are matched on; mode is not part of it.
type CapacityKey struct {
	DoctorID uuid.UUID
	Date     string
	Slot     SlotTime
}

func (s *ScheduleSlot) Key() SlotKey {
	return SlotKey{Date: FormatDate(s.Date), Slot: s.Slot, Mode: s.Mode}
}

func (s *ScheduleSlot) CapacityKey() CapacityKey {
	return CapacityKey{DoctorID: s.DoctorID, Date: FormatDate(s.Date), Slot: s.Slot}
}

// SlotFilter is a domain-level filter for listing a doctor's slots.
type SlotFilter struct {
	DoctorID  uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// AvailableSlot is a slot with its remaining capacity.
type AvailableSlot struct {
	SlotID            uuid.UUID
	DoctorID          uuid.UUID
	DoctorName        string
	Date              time.Time
	Slot              SlotTime
	Mode              AppointmentMode
	Capacity          int
	CapacityRemaining int
}
