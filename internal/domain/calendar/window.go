package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"space-booking/internal/pkg/errs"
)

const (
	minutesPerDay      = 24 * 60
	billingStepMinutes = 30
)

var (
	ErrInvalidWindow = errs.New("invalid time window")
	// ErrWindowNotInZone marks a window endpoint that a DST transition skips or repeats.
	ErrWindowNotInZone = errs.New("window time does not exist or is ambiguous in the location timezone")
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	minutes int
}

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %02d:%02d out of range", ErrInvalidWindow, hour, minute)
	}
	return ClockTime{minutes: hour*60 + minute}, nil
}

// ParseClockTime accepts "HH:MM" in 24-hour notation.
func ParseClockTime(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return ClockTime{}, fmt.Errorf("%w: malformed time %q", ErrInvalidWindow, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: malformed time %q", ErrInvalidWindow, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: malformed time %q", ErrInvalidWindow, s)
	}
	return NewClockTime(hour, minute)
}

func (c ClockTime) Hour() int    { return c.minutes / 60 }
func (c ClockTime) Minute() int  { return c.minutes % 60 }
func (c ClockTime) Minutes() int { return c.minutes }

// CeilHour is the first whole hour at or after c.
func (c ClockTime) CeilHour() int {
	return (c.minutes + 59) / 60
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is a candidate booking window starting on Date. An End at or before Start
// continues into the following day.
type Window struct {
	Date  Date      `json:"date"`
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

func NewWindow(date Date, start, end ClockTime) (Window, error) {
	if date.IsZero() {
		return Window{}, fmt.Errorf("%w: missing date", ErrInvalidWindow)
	}
	return Window{Date: date, Start: start, End: end}, nil
}

func ParseWindow(date, start, end string) (Window, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}
	s, err := ParseClockTime(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(d, s, e)
}

func (w Window) CrossesMidnight() bool {
	return w.End.minutes <= w.Start.minutes
}

func (w Window) EndDate() Date {
	if w.CrossesMidnight() {
		return w.Date.AddDays(1)
	}
	return w.Date
}

func (w Window) rawMinutes() int {
	if w.CrossesMidnight() {
		return minutesPerDay - w.Start.minutes + w.End.minutes
	}
	return w.End.minutes - w.Start.minutes
}

// DurationHours is the billable length in half-hour steps; partial steps round up.
func (w Window) DurationHours() float64 {
	steps := (w.rawMinutes() + billingStepMinutes - 1) / billingStepMinutes
	return float64(steps) / 2
}

// Instants resolves the window to instants in zone. Both endpoints must name
// exactly one instant, so billed hours and held hours cannot drift apart at
// the endpoints of a DST transition.
func (w Window) Instants(zone *time.Location) (time.Time, time.Time, error) {
	start, err := resolveLocal(w.Date, w.Start.minutes, zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := resolveLocal(w.EndDate(), w.End.minutes, zone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func resolveLocal(d Date, minutes int, zone *time.Location) (time.Time, error) {
	t := d.At(minutes, zone)
	if DateOf(t) != d || t.Hour()*60+t.Minute() != minutes {
		return time.Time{}, fmt.Errorf("%w: %s %s skipped in %s", ErrWindowNotInZone, d, ClockTime{minutes: minutes}, zone)
	}
	// A repeated wall time has a twin instant one offset change away.
	_, offset := t.Zone()
	for _, probe := range []time.Time{t.Add(-3 * time.Hour), t.Add(3 * time.Hour)} {
		_, other := probe.Zone()
		if other == offset {
			continue
		}
		twin := t.Add(time.Duration(offset-other) * time.Second).In(zone)
		if DateOf(twin) == d && twin.Hour() == t.Hour() && twin.Minute() == t.Minute() {
			return time.Time{}, fmt.Errorf("%w: %s %s repeats in %s", ErrWindowNotInZone, d, ClockTime{minutes: minutes}, zone)
		}
	}
	return t, nil
}

func (w Window) String() string {
	return fmt.Sprintf("%s %s-%s", w.Date, w.Start, w.End)
}
