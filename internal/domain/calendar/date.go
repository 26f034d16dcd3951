package calendar

import (
	"fmt"
	"time"

	"space-booking/internal/pkg/errs"
)

const (
	dateLayout   = "2006-01-02"
	MaxRangeDays = 366
)

var (
	ErrInvalidDate  = errs.New("invalid date")
	ErrInvalidRange = errs.New("invalid date range")
	ErrRangeTooLong = errs.New("date range is too long")
)

// Date is a calendar day without a time zone. It is comparable and usable as a map key.
type Date struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// At returns the wall-clock instant minutes after midnight of d in zone.
func (d Date) At(minutes int, zone *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, minutes, 0, 0, zone)
}

func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Range is an inclusive span of calendar days.
type Range struct {
	From Date
	To   Date
}

func NewRange(from, to Date) (Range, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return Range{}, ErrInvalidRange
	}
	r := Range{From: from, To: to}
	if r.Len() > MaxRangeDays {
		return Range{}, ErrRangeTooLong
	}
	return r, nil
}

func (r Range) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

func (r Range) Len() int {
	n := 0
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		n++
	}
	return n
}

func (r Range) Days() []Date {
	days := make([]Date, 0, r.Len())
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Expand grows the range by n days on both ends.
func (r Range) Expand(n int) Range {
	return Range{From: r.From.AddDays(-n), To: r.To.AddDays(n)}
}

// Bounds returns the half-open instant interval [start of From, start of To+1) in zone.
func (r Range) Bounds(zone *time.Location) (time.Time, time.Time) {
	return r.From.At(0, zone), r.To.AddDays(1).At(0, zone)
}
