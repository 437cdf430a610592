package entity

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestDoctor_SlotRange(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		wantFrom int
		wantTo   int
		wantErr  error
	}{
		{name: "single slot", from: "10:00 AM", to: "10:00 AM", wantFrom: 20, wantTo: 20},
		{name: "morning", from: "09:00 AM", to: "11:30 AM", wantFrom: 18, wantTo: 23},
		{name: "reversed", from: "02:00 PM", to: "01:00 PM", wantErr: ErrInvalidSlotRange},
		{name: "missing to", from: "09:00 AM", wantErr: ErrInvalidSlotTime},
		{name: "unknown label", from: "09:10 AM", to: "10:00 AM", wantErr: ErrInvalidSlotTime},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := &Doctor{FromSlot: c.from, ToSlot: c.to}
			from, to, err := d.SlotRange()
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Fatalf("expected %v, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SlotRange: %v", err)
			}
			if from != c.wantFrom || to != c.wantTo {
				t.Errorf("SlotRange() = %d..%d, want %d..%d", from, to, c.wantFrom, c.wantTo)
			}
		})
	}
}

func TestDoctor_ValidateAvailability(t *testing.T) {
	d := &Doctor{FromSlot: "10:00 AM", ToSlot: "11:00 AM"}
	if err := d.ValidateAvailability(); !errors.Is(err, ErrNoEnabledDays) {
		t.Errorf("expected ErrNoEnabledDays, got %v", err)
	}

	d.SetEnabledDays([]Weekday{Friday})
	if err := d.ValidateAvailability(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	days := d.EnabledDays()
	if len(days) != 1 || !days[Friday] {
		t.Errorf("EnabledDays() = %v, want only friday", days)
	}

	d.SetEnabledDays([]Weekday{Monday, Sunday})
	if d.Friday || !d.Monday || !d.Sunday {
		t.Errorf("SetEnabledDays did not overwrite flags: %+v", d)
	}
}

func TestDoctor_WindowBookkeeping(t *testing.T) {
	w := WindowFor(time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC), 3)
	d := &Doctor{}

	if d.HasWindow(w) || d.GeneratedFrom(w.Start) {
		t.Fatal("doctor without window must not report one")
	}

	start, end := w.Start, w.End
	d.FromDate, d.ToDate = &start, &end
	if !d.HasWindow(w) || !d.GeneratedFrom(w.Start) {
		t.Error("expected window to match")
	}

	next := WindowFor(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 3)
	if d.HasWindow(next) || d.GeneratedFrom(next.Start) {
		t.Error("expected later window not to match")
	}
}

func TestNameVariantPattern(t *testing.T) {
	cases := []struct {
		base, name string
		want       bool
	}{
		{"Dr. A", "Dr. A-2", true},
		{"Dr. A", "Dr. A-12", true},
		{"Dr. A", "Dr. A", false},
		{"Dr. A", "Dr. A-Smith", false},
		{"Dr. A", "Dr. A-2-3", false},
		{"Dr. A", "DrX A-2", false},
		{"Dr_%", "Dr_%-2", true},
		{"Dr_%", "Drab-2", false},
		{"(Ortho) Rao", "(Ortho) Rao-3", true},
	}
	for _, c := range cases {
		got := regexp.MustCompile(NameVariantPattern(c.base)).MatchString(c.name)
		if got != c.want {
			t.Errorf("NameVariantPattern(%q) on %q = %v, want %v", c.base, c.name, got, c.want)
		}
	}
}
