package occupancy

import (
	"math/bits"
	"time"

	"space-booking/internal/domain/calendar"

	"github.com/google/uuid"
)

const HoursPerDay = 24

const fullDay = uint32(1)<<HoursPerDay - 1

type DayState string

const (
	DayFree    DayState = "free"
	DayPartial DayState = "partial"
	DayFull    DayState = "full"
)

// Slot is one wall-clock hour on one date in the location zone.
type Slot struct {
	Date calendar.Date `json:"date"`
	Hour int           `json:"hour"`
}

type DayStatus struct {
	Date  calendar.Date `json:"date"`
	State DayState      `json:"state"`
	Hours []int         `json:"hours,omitempty"`
}

// Holder is what occupies a slot: the blackout calendar or a reservation.
type Holder struct {
	Blackout      bool
	ReservationID uuid.UUID
	CreatedAt     time.Time
}

// Occupancy is an immutable per-hour view over a date range.
type Occupancy struct {
	rng     calendar.Range
	zone    *time.Location
	days    map[calendar.Date]uint32
	holders map[Slot][]Holder
}

func (o *Occupancy) Range() calendar.Range { return o.rng }
func (o *Occupancy) Zone() *time.Location  { return o.zone }

func (o *Occupancy) mask(d calendar.Date) uint32 {
	return o.days[d]
}

// IsFree reports whether hours [startHour, endHour) on date are unoccupied.
// An endHour at or before startHour continues into the next day.
// Hours on dates outside the aggregated range are never free.
func (o *Occupancy) IsFree(date calendar.Date, startHour, endHour int) bool {
	if startHour < 0 || startHour >= HoursPerDay || endHour < 0 || endHour > HoursPerDay {
		return false
	}
	if endHour > startHour {
		return o.spanFree(date, startHour, endHour)
	}
	return o.spanFree(date, startHour, HoursPerDay) && o.spanFree(date.AddDays(1), 0, endHour)
}

// IsWindowFree checks every hour the window touches.
func (o *Occupancy) IsWindowFree(w calendar.Window) bool {
	for _, s := range windowSpans(w) {
		if !o.spanFree(s.date, s.lo, s.hi) {
			return false
		}
	}
	return true
}

// Conflicts lists the distinct holders of occupied hours inside the window.
func (o *Occupancy) Conflicts(w calendar.Window) []Holder {
	var out []Holder
	seenBlackout := false
	seen := make(map[uuid.UUID]bool)
	for _, s := range windowSpans(w) {
		for h := s.lo; h < s.hi; h++ {
			for _, holder := range o.holders[Slot{Date: s.date, Hour: h}] {
				if holder.Blackout {
					if !seenBlackout {
						seenBlackout = true
						out = append(out, holder)
					}
					continue
				}
				if !seen[holder.ReservationID] {
					seen[holder.ReservationID] = true
					out = append(out, holder)
				}
			}
		}
	}
	return out
}

// BlockedSlots lists occupied hours in r, ordered by date then hour.
func (o *Occupancy) BlockedSlots(r calendar.Range) []Slot {
	var out []Slot
	for _, d := range o.datesWithin(r) {
		m := o.mask(d)
		for h := 0; h < HoursPerDay; h++ {
			if m&(1<<h) != 0 {
				out = append(out, Slot{Date: d, Hour: h})
			}
		}
	}
	return out
}

// FullyBlockedDates lists dates in r with all 24 hours occupied.
func (o *Occupancy) FullyBlockedDates(r calendar.Range) []calendar.Date {
	var out []calendar.Date
	for _, d := range o.datesWithin(r) {
		if o.mask(d) == fullDay {
			out = append(out, d)
		}
	}
	return out
}

// Days classifies every date in r. Partial days carry their occupied hours.
func (o *Occupancy) Days(r calendar.Range) []DayStatus {
	dates := o.datesWithin(r)
	out := make([]DayStatus, 0, len(dates))
	for _, d := range dates {
		m := o.mask(d)
		status := DayStatus{Date: d}
		switch {
		case m == 0:
			status.State = DayFree
		case m == fullDay:
			status.State = DayFull
		default:
			status.State = DayPartial
			status.Hours = hoursOf(m)
		}
		out = append(out, status)
	}
	return out
}

// OccupiedHours returns the occupied hours of date in ascending order.
func (o *Occupancy) OccupiedHours(date calendar.Date) []int {
	return hoursOf(o.mask(date))
}

func (o *Occupancy) spanFree(d calendar.Date, lo, hi int) bool {
	if lo >= hi {
		return true
	}
	if !o.rng.Contains(d) {
		return false
	}
	return o.mask(d)&spanMask(lo, hi) == 0
}

func (o *Occupancy) datesWithin(r calendar.Range) []calendar.Date {
	from, to := r.From, r.To
	if from.Before(o.rng.From) {
		from = o.rng.From
	}
	if to.After(o.rng.To) {
		to = o.rng.To
	}
	if to.Before(from) {
		return nil
	}
	return calendar.Range{From: from, To: to}.Days()
}

type span struct {
	date   calendar.Date
	lo, hi int
}

func windowSpans(w calendar.Window) []span {
	startHour := w.Start.Hour()
	endHour := w.End.CeilHour()
	if !w.CrossesMidnight() {
		return []span{{date: w.Date, lo: startHour, hi: endHour}}
	}
	return []span{
		{date: w.Date, lo: startHour, hi: HoursPerDay},
		{date: w.Date.AddDays(1), lo: 0, hi: endHour},
	}
}

func spanMask(lo, hi int) uint32 {
	if lo < 0 {
		lo = 0
	}
	if hi > HoursPerDay {
		hi = HoursPerDay
	}
	if lo >= hi {
		return 0
	}
	return (uint32(1)<<hi - 1) &^ (uint32(1)<<lo - 1)
}

func hoursOf(m uint32) []int {
	if m == 0 {
		return nil
	}
	out := make([]int, 0, bits.OnesCount32(m))
	for h := 0; h < HoursPerDay; h++ {
		if m&(1<<h) != 0 {
			out = append(out, h)
		}
	}
	return out
}
