package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
)

func newAvailabilityUsecase(f *fixture, today string) *availabilityUsecase {
	uc := NewAvailabilityUsecase(f.tx, f.log, f.doctors, f.slots, f.consults, f.auditService, time.UTC).(*availabilityUsecase)
	now, _ := entity.ParseDate(today)
	uc.now = func() time.Time { return now.Add(10 * time.Hour) }
	return uc
}

func TestGetAvailableSlots_SubtractsConsultationsAcrossModes(t *testing.T) {
	tests := []struct {
		name          string
		consultations []entity.AppointmentMode
		wantSlots     int
		wantRemaining int
	}{
		{name: "no bookings", wantSlots: 2, wantRemaining: 3},
		{name: "two bookings", consultations: []entity.AppointmentMode{entity.ModeInPerson, entity.ModeCall}, wantSlots: 2, wantRemaining: 1},
		{name: "full", consultations: []entity.AppointmentMode{entity.ModeInPerson, entity.ModeInPerson, entity.ModeCall}, wantSlots: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			d := f.addDoctor("Dr. Mehta", "10:00 AM", "10:00 AM", 3, entity.Monday)
			f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 3)
			f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeCall, 3)
			for _, mode := range tt.consultations {
				f.addConsultation(d.ID, "2024-11-04", "10:00 AM", mode)
			}

			result, err := newAvailabilityUsecase(f, "2024-11-01").GetAvailableSlots(context.Background(), d.ID, nil)
			if err != nil {
				t.Fatalf("GetAvailableSlots: %v", err)
			}
			if result.Total != tt.wantSlots {
				t.Fatalf("got %d slots, want %d", result.Total, tt.wantSlots)
			}
			for _, s := range result.Slots {
				if s.CapacityRemaining != tt.wantRemaining || s.Capacity != 3 {
					t.Errorf("%s %s: remaining=%d capacity=%d", s.Slot, s.Mode, s.CapacityRemaining, s.Capacity)
				}
			}
		})
	}
}

func TestGetAvailableSlots_FromDateAndOrdering(t *testing.T) {
	f := newFixture()
	d := f.addDoctor("Dr. Mehta", "09:00 AM", "10:00 AM", 1, entity.Monday)
	f.addSlot(d.ID, "2024-10-28", "09:00 AM", entity.ModeInPerson, 1)
	f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeCall, 1)
	f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 1)
	f.addSlot(d.ID, "2024-11-04", "09:00 AM", entity.ModeInPerson, 1)

	uc := newAvailabilityUsecase(f, "2024-11-01")

	result, err := uc.GetAvailableSlots(context.Background(), d.ID, nil)
	if err != nil {
		t.Fatalf("GetAvailableSlots: %v", err)
	}
	got := make([]string, len(result.Slots))
	for i, s := range result.Slots {
		got[i] = s.Date + " " + s.Slot + " " + s.Mode
	}
	want := []string{
		"2024-11-04 09:00 AM In-Person",
		"2024-11-04 10:00 AM In-Person",
		"2024-11-04 10:00 AM Call",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %q, want %q", i, got[i], want[i])
		}
	}

	from, _ := entity.ParseDate("2024-10-01")
	result, err = uc.GetAvailableSlots(context.Background(), d.ID, &from)
	if err != nil {
		t.Fatalf("GetAvailableSlots: %v", err)
	}
	if result.Total != 4 {
		t.Errorf("explicit from_date: got %d slots, want 4", result.Total)
	}
}

func TestGetAvailableSlots_UnknownDoctor(t *testing.T) {
	f := newFixture()
	_, err := newAvailabilityUsecase(f, "2024-11-01").GetAvailableSlots(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestGetAvailableDoctors_FiltersByCenter(t *testing.T) {
	f := newFixture()
	north := f.addDoctor("Dr. North", "10:00 AM", "10:00 AM", 2, entity.Monday)
	north.Center = "Bandra"
	f.store.doctors[north.ID] = north
	south := f.addDoctor("Dr. South", "10:00 AM", "10:00 AM", 2, entity.Monday)
	south.Center = "Andheri"
	f.store.doctors[south.ID] = south

	f.addSlot(north.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 2)
	f.addSlot(south.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 2)
	f.addSlot(south.ID, "2024-11-05", "10:00 AM", entity.ModeInPerson, 2)
	f.addConsultation(south.ID, "2024-11-04", "10:00 AM", entity.ModeCall)

	uc := newAvailabilityUsecase(f, "2024-11-01")
	date, _ := entity.ParseDate("2024-11-04")

	all, err := uc.GetAvailableDoctors(context.Background(), "", date)
	if err != nil {
		t.Fatalf("GetAvailableDoctors: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("got %d slots, want 2", all.Total)
	}
	if all.Slots[0].Doctor != "Dr. North" || all.Slots[1].Doctor != "Dr. South" {
		t.Errorf("unexpected order %s, %s", all.Slots[0].Doctor, all.Slots[1].Doctor)
	}
	if all.Slots[1].CapacityRemaining != 1 {
		t.Errorf("Dr. South remaining = %d, want 1", all.Slots[1].CapacityRemaining)
	}

	filtered, err := uc.GetAvailableDoctors(context.Background(), "Andheri", date)
	if err != nil {
		t.Fatalf("GetAvailableDoctors: %v", err)
	}
	if filtered.Total != 1 || filtered.Slots[0].DoctorID != south.ID {
		t.Errorf("center filter returned %+v", filtered.Slots)
	}
}

func TestGetDoctorScheduleSlots(t *testing.T) {
	f := newFixture()
	d := f.addDoctor("Dr. Mehta", "10:00 AM", "10:00 AM", 2, entity.Monday)
	f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 2)
	f.addSlot(d.ID, "2024-11-11", "10:00 AM", entity.ModeInPerson, 2)
	uc := newAvailabilityUsecase(f, "2024-11-01")

	start, _ := entity.ParseDate("2024-11-05")
	end, _ := entity.ParseDate("2024-11-30")
	result, err := uc.GetDoctorScheduleSlots(context.Background(), d.ID, &start, &end)
	if err != nil {
		t.Fatalf("GetDoctorScheduleSlots: %v", err)
	}
	if result.Total != 1 || result.Slots[0].Date != "2024-11-11" {
		t.Errorf("unexpected slots %+v", result.Slots)
	}

	if _, err := uc.GetDoctorScheduleSlots(context.Background(), d.ID, &end, &start); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestBookConsultation(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		slot     string
		mode     string
		existing int
		wantErr  error
	}{
		{name: "books free slot", date: "2024-11-04", slot: "10:00 AM", mode: "Call"},
		{name: "capacity shared across modes", date: "2024-11-04", slot: "10:00 AM", mode: "Call", existing: 2, wantErr: ErrSlotFull},
		{name: "no slot at that time", date: "2024-11-04", slot: "11:00 AM", mode: "Call", wantErr: ErrSlotNotFound},
		{name: "past date", date: "2024-10-28", slot: "10:00 AM", mode: "Call", wantErr: ErrSlotInPast},
		{name: "bad date", date: "04-11-2024", slot: "10:00 AM", mode: "Call", wantErr: ErrInvalidDate},
		{name: "bad slot", date: "2024-11-04", slot: "10:10 AM", mode: "Call", wantErr: entity.ErrInvalidSlotTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			d := f.addDoctor("Dr. Mehta", "10:00 AM", "10:00 AM", 2, entity.Monday)
			f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 2)
			f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeCall, 2)
			for i := 0; i < tt.existing; i++ {
				f.addConsultation(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson)
			}

			resp, err := newAvailabilityUsecase(f, "2024-11-01").BookConsultation(context.Background(), "desk", &dto.CreateConsultationRequest{
				DoctorID: d.ID,
				Patient:  "Asha",
				Date:     tt.date,
				Slot:     tt.slot,
				Mode:     tt.mode,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(f.store.consultations) != tt.existing {
					t.Errorf("consultation written despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BookConsultation: %v", err)
			}
			if resp.Status != string(entity.ConsultationStatusScheduled) || resp.Mode != "Call" {
				t.Errorf("unexpected response %+v", resp)
			}
			if len(f.store.consultations) != 1 {
				t.Errorf("expected 1 consultation, got %d", len(f.store.consultations))
			}
			if len(f.store.auditsWithAction(entity.AuditActionConsultCreate)) != 1 {
				t.Error("expected a booking audit entry")
			}
		})
	}
}

func TestRemainingCapacity_ExcludesOverbooked(t *testing.T) {
	doctorID := uuid.New()
	date, _ := entity.ParseDate("2024-11-04")
	slots := []entity.ScheduleSlot{
		{ID: uuid.New(), DoctorID: doctorID, Date: date, Slot: "10:00 AM", Mode: entity.ModeInPerson, Patients: 1},
		{ID: uuid.New(), DoctorID: doctorID, Date: date, Slot: "10:30 AM", Mode: entity.ModeInPerson, Patients: 0},
	}
	consumed := map[entity.CapacityKey]int{
		{DoctorID: doctorID, Date: "2024-11-04", Slot: "10:00 AM"}: 2,
	}

	if got := RemainingCapacity(slots, consumed, nil); len(got) != 0 {
		t.Errorf("expected no available slots, got %+v", got)
	}
}

func TestBookConsultation_AuditFailureKeepsBooking(t *testing.T) {
	f := newFixture()
	d := f.addDoctor("Dr. Mehta", "10:00 AM", "10:00 AM", 2, entity.Monday)
	f.addSlot(d.ID, "2024-11-04", "10:00 AM", entity.ModeInPerson, 2)
	f.store.auditErr = errors.New("audit_logs unavailable")

	_, err := newAvailabilityUsecase(f, "2024-11-01").BookConsultation(context.Background(), "desk", &dto.CreateConsultationRequest{
		DoctorID: d.ID,
		Patient:  "Asha",
		Date:     "2024-11-04",
		Slot:     "10:00 AM",
		Mode:     "In-Person",
	})
	if err != nil {
		t.Fatalf("BookConsultation: %v", err)
	}
	if len(f.store.consultations) != 1 {
		t.Errorf("expected 1 consultation, got %d", len(f.store.consultations))
	}
}
