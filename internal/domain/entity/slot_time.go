package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSlotTime  = errors.New("invalid slot time")
	ErrInvalidSlotRange = errors.New("invalid slot range: from_slot is after to_slot")
	ErrNoEnabledDays    = errors.New("no days selected")
)

// SlotTime is one of the 48 half-hour labels of a day, e.g. "10:30 AM".
type SlotTime string

// AllSlotTimes is the fixed, ordered slot taxonomy. Ordering is the index in this list.
var AllSlotTimes = []SlotTime{
	"12:00 AM", "12:30 AM", "01:00 AM", "01:30 AM", "02:00 AM", "02:30 AM",
	"03:00 AM", "03:30 AM", "04:00 AM", "04:30 AM", "05:00 AM", "05:30 AM",
	"06:00 AM", "06:30 AM", "07:00 AM", "07:30 AM", "08:00 AM", "08:30 AM",
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"12:00 PM", "12:30 PM", "01:00 PM", "01:30 PM", "02:00 PM", "02:30 PM",
	"03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM", "05:00 PM", "05:30 PM",
	"06:00 PM", "06:30 PM", "07:00 PM", "07:30 PM", "08:00 PM", "08:30 PM",
	"09:00 PM", "09:30 PM", "10:00 PM", "10:30 PM", "11:00 PM", "11:30 PM",
}

var slotIndex = func() map[SlotTime]int {
	m := make(map[SlotTime]int, len(AllSlotTimes))
	for i, s := range AllSlotTimes {
		m[s] = i
	}
	return m
}()

// ParseSlotTime resolves a label to its canonical SlotTime and index.
func ParseSlotTime(label string) (SlotTime, int, error) {
	s := SlotTime(strings.TrimSpace(label))
	idx, ok := slotIndex[s]
	if !ok {
		return "", -1, fmt.Errorf("%w: %q", ErrInvalidSlotTime, label)
	}
	return s, idx, nil
}

// IsValidSlotTime reports whether label is part of the taxonomy.
func IsValidSlotTime(label string) bool {
	_, _, err := ParseSlotTime(label)
	return err == nil
}

// Index returns the position in AllSlotTimes, or -1 for unknown labels.
func (s SlotTime) Index() int {
	if idx, ok := slotIndex[s]; ok {
		return idx
	}
	return -1
}

// Minutes returns minutes since midnight, or -1 for unknown labels.
func (s SlotTime) Minutes() int {
	idx := s.Index()
	if idx < 0 {
		return -1
	}
	return idx * 30
}

// Clock returns the 24h "15:04" form of the slot.
func (s SlotTime) Clock() string {
	m := s.Minutes()
	if m < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (s SlotTime) String() string {
	return string(s)
}

// Weekday is a lower-case day name, Monday first.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf maps a date to its Weekday (ISO numbering, Monday = 1).
func WeekdayOf(date time.Time) Weekday {
	// time.Sunday is 0; shift so Monday lands on index 0.
	return AllWeekdays[(int(date.Weekday())+6)%7]
}

// AppointmentMode is the channel a slot is bookable through.
type AppointmentMode string

const (
	ModeInPerson AppointmentMode = "In-Person"
	ModeCall     AppointmentMode = "Call"
)

// GeneratedModes lists the modes every generated slot is produced for,
// independent of a doctor's preferred mode.
var GeneratedModes = []AppointmentMode{ModeInPerson, ModeCall}

func (m AppointmentMode) IsValid() bool {
	return m == ModeInPerson || m == ModeCall
}
