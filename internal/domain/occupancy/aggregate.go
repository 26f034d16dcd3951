package occupancy

import (
	"fmt"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/pkg/errs"
)

// Blackout is the owner-declared unavailability of a location.
type Blackout struct {
	Dates []calendar.Date `json:"dates"`
	Slots []Slot          `json:"slots"`
}

var ErrInvalidBlackout = errs.New("invalid blackout")

// Validate rejects zero dates and hours outside 0..23.
func (b Blackout) Validate() error {
	for _, d := range b.Dates {
		if d.IsZero() {
			return errs.Wrap(ErrInvalidBlackout, "missing date")
		}
	}
	for _, s := range b.Slots {
		if s.Date.IsZero() {
			return errs.Wrap(ErrInvalidBlackout, "slot without date")
		}
		if s.Hour < 0 || s.Hour >= HoursPerDay {
			return errs.Wrap(ErrInvalidBlackout, fmt.Sprintf("hour %d out of range", s.Hour))
		}
	}
	return nil
}

type Input struct {
	Zone         *time.Location
	Range        calendar.Range
	Blackout     Blackout
	Reservations []reservation.Record
	Now          time.Time
}

// Aggregate merges blackouts and occupying reservations into per-hour occupancy
// for in.Range. Hours are wall-clock hours in in.Zone.
func Aggregate(in Input) *Occupancy {
	zone := in.Zone
	if zone == nil {
		zone = time.UTC
	}
	o := &Occupancy{
		rng:     in.Range,
		zone:    zone,
		days:    make(map[calendar.Date]uint32),
		holders: make(map[Slot][]Holder),
	}

	blackout := Holder{Blackout: true}
	for _, d := range in.Blackout.Dates {
		o.occupy(d, 0, HoursPerDay, blackout)
	}
	for _, s := range in.Blackout.Slots {
		if s.Hour < 0 || s.Hour >= HoursPerDay {
			continue
		}
		o.occupy(s.Date, s.Hour, s.Hour+1, blackout)
	}

	for _, rec := range in.Reservations {
		if !rec.Occupies(in.Now) || !rec.Start.Before(rec.End) {
			continue
		}
		o.occupyReservation(rec)
	}
	return o
}

func (o *Occupancy) occupyReservation(rec reservation.Record) {
	start := rec.Start.In(o.zone)
	end := rec.End.In(o.zone)

	startDate, startHour := calendar.DateOf(start), start.Hour()
	endDate, endHour := calendar.DateOf(end), end.Hour()
	if end.Minute() != 0 || end.Second() != 0 || end.Nanosecond() != 0 {
		endHour++
	}
	if endHour == 0 {
		endDate = endDate.AddDays(-1)
		endHour = HoursPerDay
	}

	from, to := startDate, endDate
	if from.Before(o.rng.From) {
		from = o.rng.From
	}
	if to.After(o.rng.To) {
		to = o.rng.To
	}

	holder := Holder{ReservationID: rec.ID, CreatedAt: rec.CreatedAt}
	for d := from; !d.After(to); d = d.AddDays(1) {
		lo, hi := 0, HoursPerDay
		if d == startDate {
			lo = startHour
		}
		if d == endDate {
			hi = endHour
		}
		o.occupy(d, lo, hi, holder)
	}
}

func (o *Occupancy) occupy(d calendar.Date, lo, hi int, holder Holder) {
	if !o.rng.Contains(d) || lo >= hi {
		return
	}
	o.days[d] |= spanMask(lo, hi)
	for h := lo; h < hi; h++ {
		key := Slot{Date: d, Hour: h}
		o.holders[key] = append(o.holders[key], holder)
	}
}
