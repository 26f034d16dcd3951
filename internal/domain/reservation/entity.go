package reservation

import (
	"fmt"
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeSlot   = errs.New("invalid time slot")
	ErrSlotInPast        = errs.New("time slot starts in the past")
	ErrInvalidStatus     = errs.New("invalid reservation status")
	ErrInvalidTransition = errs.New("invalid reservation status transition")
	ErrNoteTooLong       = errs.New("note is too long")
	ErrMissingGuest      = errs.New("guest is required")
)

type Reservation struct {
	id         uuid.UUID
	locationID uuid.UUID
	guestID    uuid.UUID
	timeSlot   TimeSlot
	status     Status
	quote      pricing.Quote
	note       Note
	expiresAt  *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

func ReconstructReservation(
	id, locationID, guestID uuid.UUID,
	timeSlot TimeSlot,
	status Status,
	quote pricing.Quote,
	note Note,
	expiresAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:         id,
		locationID: locationID,
		guestID:    guestID,
		timeSlot:   timeSlot,
		status:     status,
		quote:      quote,
		note:       note,
		expiresAt:  expiresAt,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Transition moves the reservation to next or reports ErrInvalidTransition.
func (r *Reservation) Transition(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !r.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, next)
	}
	r.status = next
	if next != StatusPending {
		r.expiresAt = nil
	}
	r.updatedAt = now
	return nil
}

// IsExpired reports a pending reservation whose host response deadline has passed.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.status == StatusPending && r.expiresAt != nil && !now.Before(*r.expiresAt)
}

func (r *Reservation) Record() Record {
	return Record{
		ID:        r.id,
		Start:     r.timeSlot.Start(),
		End:       r.timeSlot.End(),
		Status:    r.status,
		CreatedAt: r.createdAt,
		ExpiresAt: r.expiresAt,
	}
}

func (r *Reservation) ID() uuid.UUID         { return r.id }
func (r *Reservation) LocationID() uuid.UUID { return r.locationID }
func (r *Reservation) GuestID() uuid.UUID    { return r.guestID }
func (r *Reservation) TimeSlot() TimeSlot    { return r.timeSlot }
func (r *Reservation) Status() Status        { return r.status }
func (r *Reservation) Quote() pricing.Quote  { return r.quote }
func (r *Reservation) Note() Note            { return r.note }
func (r *Reservation) ExpiresAt() *time.Time { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time  { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time  { return r.updatedAt }

// Record is the occupancy-relevant view of a reservation.
type Record struct {
	ID        uuid.UUID
	Start     time.Time
	End       time.Time
	Status    Status
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Occupies reports whether the record holds its slot at now.
func (rec Record) Occupies(now time.Time) bool {
	if !rec.Status.IsOccupying() {
		return false
	}
	if rec.Status == StatusPending && rec.ExpiresAt != nil && !now.Before(*rec.ExpiresAt) {
		return false
	}
	return true
}
