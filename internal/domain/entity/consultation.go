package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConsultationStatus string

const (
	ConsultationStatusScheduled   ConsultationStatus = "Scheduled"
	ConsultationStatusRescheduled ConsultationStatus = "Rescheduled"
	ConsultationStatusNotVisited  ConsultationStatus = "Not Visited"
	ConsultationStatusBooked      ConsultationStatus = "Booked"
)

// Consultation is a booked appointment. Only the fields capacity accounting needs are kept.
type Consultation struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_consultation_slot,priority:1" json:"doctor_id"`
	Patient   string             `gorm:"type:varchar(140);not null" json:"patient"`
	Center    string             `gorm:"type:varchar(140)" json:"center,omitempty"`
	Date      time.Time          `gorm:"type:date;not null;index:idx_consultation_slot,priority:2" json:"date"`
	Slot      SlotTime           `gorm:"type:varchar(10);not null;index:idx_consultation_slot,priority:3" json:"slot"`
	Mode      AppointmentMode    `gorm:"type:varchar(20);not null" json:"mode"`
	Status    ConsultationStatus `gorm:"type:varchar(30);not null;default:'Scheduled'" json:"status"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) CapacityKey() CapacityKey {
	return CapacityKey{DoctorID: c.DoctorID, Date: FormatDate(c.Date), Slot: c.Slot}
}
