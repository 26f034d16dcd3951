package location

import (
	"fmt"
	"strings"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyLocationName   = errs.New("location name cannot be empty")
	ErrLocationNameTooLong = errs.New("location name is too long (max 255 characters)")
	ErrInvalidTimezone     = errs.New("invalid location timezone")
)

const MaxLocationNameLength = 255

// Location is a bookable space snapshot. It is not mutated once loaded.
type Location struct {
	id             uuid.UUID
	hostID         uuid.UUID
	name           string
	zone           *time.Location
	pricing        pricing.Pricing
	blackout       occupancy.Blackout
	instantBooking bool
	calculator     *pricing.Calculator
	createdAt      time.Time
	updatedAt      time.Time
}

func NewLocation(
	id, hostID uuid.UUID,
	name, timezone string,
	p pricing.Pricing,
	blackout occupancy.Blackout,
	instantBooking bool,
	now time.Time,
) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyLocationName
	}
	if len(name) > MaxLocationNameLength {
		return nil, ErrLocationNameTooLong
	}
	zone, err := LoadZone(timezone)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := blackout.Validate(); err != nil {
		return nil, err
	}
	return &Location{
		id:             id,
		hostID:         hostID,
		name:           name,
		zone:           zone,
		pricing:        p,
		blackout:       blackout,
		instantBooking: instantBooking,
		calculator:     pricing.NewCalculator(p),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructLocation rebuilds a stored location. An unknown zone falls back to UTC.
func ReconstructLocation(
	id, hostID uuid.UUID,
	name, timezone string,
	p pricing.Pricing,
	blackout occupancy.Blackout,
	instantBooking bool,
	createdAt, updatedAt time.Time,
) *Location {
	zone, err := LoadZone(timezone)
	if err != nil {
		zone = time.UTC
	}
	return &Location{
		id:             id,
		hostID:         hostID,
		name:           name,
		zone:           zone,
		pricing:        p,
		blackout:       blackout,
		instantBooking: instantBooking,
		calculator:     pricing.NewCalculator(p),
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrInvalidTimezone
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	return zone, nil
}

// WithPricing returns a copy carrying new pricing and booking mode.
func (l *Location) WithPricing(p pricing.Pricing, instantBooking bool, now time.Time) (*Location, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cp := *l
	cp.pricing = p
	cp.instantBooking = instantBooking
	cp.calculator = pricing.NewCalculator(p)
	cp.updatedAt = now
	return &cp, nil
}

// WithBlackout returns a copy carrying a new blackout calendar.
func (l *Location) WithBlackout(b occupancy.Blackout, now time.Time) (*Location, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	cp := *l
	cp.blackout = b
	cp.updatedAt = now
	return &cp, nil
}

// Quote prices in.Window. Windows that cannot be resolved in the location zone are
// refused here too, so a quote is only issued for a window that can be booked.
func (l *Location) Quote(in pricing.QuoteInput) (pricing.Quote, error) {
	if _, _, err := in.Window.Instants(l.zone); err != nil {
		return pricing.Quote{}, err
	}
	return l.calculator.Quote(in)
}

func (l *Location) EnabledActivities() []pricing.Activity {
	return l.calculator.Resolver().EnabledActivities()
}

func (l *Location) EnabledTiers() []pricing.Tier {
	return l.calculator.Resolver().EnabledTiers()
}

// Occupancy aggregates blackouts and reservations over rng in the location zone.
func (l *Location) Occupancy(rng calendar.Range, reservations []reservation.Record, now time.Time) *occupancy.Occupancy {
	return occupancy.Aggregate(occupancy.Input{
		Zone:         l.zone,
		Range:        rng,
		Blackout:     l.blackout,
		Reservations: reservations,
		Now:          now,
	})
}

// SlotOf resolves a window into the instants a reservation would hold.
func (l *Location) SlotOf(w calendar.Window) (reservation.TimeSlot, error) {
	start, end, err := w.Instants(l.zone)
	if err != nil {
		return reservation.TimeSlot{}, err
	}
	return reservation.NewTimeSlot(start, end)
}

func (l *Location) Terms() reservation.LocationTerms {
	return reservation.LocationTerms{ID: l.id, InstantBooking: l.instantBooking}
}

func (l *Location) ID() uuid.UUID                { return l.id }
func (l *Location) HostID() uuid.UUID            { return l.hostID }
func (l *Location) Name() string                 { return l.name }
func (l *Location) Zone() *time.Location         { return l.zone }
func (l *Location) Timezone() string             { return l.zone.String() }
func (l *Location) Pricing() pricing.Pricing     { return l.pricing }
func (l *Location) Blackout() occupancy.Blackout { return l.blackout }
func (l *Location) InstantBooking() bool         { return l.instantBooking }
func (l *Location) CreatedAt() time.Time         { return l.createdAt }
func (l *Location) UpdatedAt() time.Time         { return l.updatedAt }
