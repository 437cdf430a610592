package entity

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Doctor holds the availability profile the slot generator reads.
// FromDate/ToDate record the last generated window; they are not inputs to generation.
type Doctor struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName          string          `gorm:"type:varchar(140);uniqueIndex;not null" json:"full_name"`
	Email             string          `gorm:"type:varchar(255)" json:"email,omitempty"`
	ContactNumber     string          `gorm:"type:varchar(30)" json:"contact_number,omitempty"`
	Center            string          `gorm:"type:varchar(140);index" json:"center,omitempty"`
	FromSlot          string          `gorm:"type:varchar(10)" json:"from_slot"`
	ToSlot            string          `gorm:"type:varchar(10)" json:"to_slot"`
	PatientsPerSlot   int             `gorm:"not null;default:0" json:"patients_per_slot"`
	ModeOfAppointment AppointmentMode `gorm:"type:varchar(20)" json:"mode_of_appointment,omitempty"`
	Monday            bool            `gorm:"not null;default:false" json:"monday"`
	Tuesday           bool            `gorm:"not null;default:false" json:"tuesday"`
	Wednesday         bool            `gorm:"not null;default:false" json:"wednesday"`
	Thursday          bool            `gorm:"not null;default:false" json:"thursday"`
	Friday            bool            `gorm:"not null;default:false" json:"friday"`
	Saturday          bool            `gorm:"not null;default:false" json:"saturday"`
	Sunday            bool            `gorm:"not null;default:false" json:"sunday"`
	FromDate          *time.Time      `gorm:"type:date" json:"from_date,omitempty"`
	ToDate            *time.Time      `gorm:"type:date" json:"to_date,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// EnabledDays returns the days slots should be generated for, Monday first.
func (d *Doctor) EnabledDays() map[Weekday]bool {
	flags := map[Weekday]bool{
		Monday:    d.Monday,
		Tuesday:   d.Tuesday,
		Wednesday: d.Wednesday,
		Thursday:  d.Thursday,
		Friday:    d.Friday,
		Saturday:  d.Saturday,
		Sunday:    d.Sunday,
	}
	enabled := make(map[Weekday]bool)
	for day, on := range flags {
		if on {
			enabled[day] = true
		}
	}
	return enabled
}

// SetEnabledDays overwrites the seven day flags.
func (d *Doctor) SetEnabledDays(days []Weekday) {
	d.Monday, d.Tuesday, d.Wednesday, d.Thursday = false, false, false, false
	d.Friday, d.Saturday, d.Sunday = false, false, false
	for _, day := range days {
		switch day {
		case Monday:
			d.Monday = true
		case Tuesday:
			d.Tuesday = true
		case Wednesday:
			d.Wednesday = true
		case Thursday:
			d.Thursday = true
		case Friday:
			d.Friday = true
		case Saturday:
			d.Saturday = true
		case Sunday:
			d.Sunday = true
		}
	}
}

// SlotRange resolves FromSlot/ToSlot into inclusive indices of AllSlotTimes.
func (d *Doctor) SlotRange() (int, int, error) {
	if d.FromSlot == "" || d.ToSlot == "" {
		return 0, 0, fmt.Errorf("%w: missing from_slot or to_slot", ErrInvalidSlotTime)
	}
	_, from, err := ParseSlotTime(d.FromSlot)
	if err != nil {
		return 0, 0, err
	}
	_, to, err := ParseSlotTime(d.ToSlot)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		return 0, 0, fmt.Errorf("%w (%s > %s)", ErrInvalidSlotRange, d.FromSlot, d.ToSlot)
	}
	return from, to, nil
}

// ValidateAvailability reports why slots cannot be generated for the doctor, if anything.
func (d *Doctor) ValidateAvailability() error {
	if _, _, err := d.SlotRange(); err != nil {
		return err
	}
	if len(d.EnabledDays()) == 0 {
		return ErrNoEnabledDays
	}
	return nil
}

// HasWindow reports whether the bookkeeping fields already equal w.
func (d *Doctor) HasWindow(w GenerationWindow) bool {
	if d.FromDate == nil || d.ToDate == nil {
		return false
	}
	return sameDay(*d.FromDate, w.Start) && sameDay(*d.ToDate, w.End)
}

// GeneratedFrom reports whether the last generated window started at start.
func (d *Doctor) GeneratedFrom(start time.Time) bool {
	return d.FromDate != nil && sameDay(*d.FromDate, start)
}

// NameVariantPattern matches fullName followed by a numeric "-N" suffix, as assigned
// to duplicate doctor names. The pattern is valid for both Go and Postgres regexes.
func NameVariantPattern(fullName string) string {
	return "^" + regexp.QuoteMeta(fullName) + "-[0-9]+$"
}
