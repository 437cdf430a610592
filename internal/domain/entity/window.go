package entity

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DefaultWindowMonths is the rolling horizon: current month plus the next two.
const DefaultWindowMonths = 3

// GenerationWindow is an inclusive range of calendar dates.
type GenerationWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor returns the window from the first day of today's month through the
// last day of the month `months-1` months later.
func WindowFor(today time.Time, months int) GenerationWindow {
	if months < 1 {
		months = 1
	}
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	// time.Date normalises month overflow, so December + 2 lands in February of the next year.
	end := start.AddDate(0, months, -1)
	return GenerationWindow{Start: start, End: end}
}

// NewWindow validates and normalises explicit bounds.
func NewWindow(start, end time.Time) (GenerationWindow, error) {
	w := GenerationWindow{Start: DateOf(start), End: DateOf(end)}
	if w.End.Before(w.Start) {
		return GenerationWindow{}, fmt.Errorf("window end %s is before start %s", FormatDate(w.End), FormatDate(w.Start))
	}
	return w, nil
}

// Days is the number of dates in the window.
func (w GenerationWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Dates returns every date in the window in order.
func (w GenerationWindow) Dates() []time.Time {
	dates := make([]time.Time, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (w GenerationWindow) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w GenerationWindow) String() string {
	return FormatDate(w.Start) + ".." + FormatDate(w.End)
}

// DateOf strips the clock and zone, keeping the calendar date of t.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func sameDay(a, b time.Time) bool {
	return FormatDate(a) == FormatDate(b)
}
