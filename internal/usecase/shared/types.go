package shared

import (
	"time"

	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

// LocationSnapshot is the stored form of a location. It is what caches hold.
type LocationSnapshot struct {
	ID             uuid.UUID          `json:"id"`
	HostID         uuid.UUID          `json:"host_id"`
	Name           string             `json:"name"`
	Timezone       string             `json:"timezone"`
	Pricing        pricing.Pricing    `json:"pricing"`
	Blackout       occupancy.Blackout `json:"blackout"`
	InstantBooking bool               `json:"instant_booking"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (s *LocationSnapshot) ToDomain() *location.Location {
	return location.ReconstructLocation(
		s.ID, s.HostID, s.Name, s.Timezone, s.Pricing, s.Blackout, s.InstantBooking, s.CreatedAt, s.UpdatedAt,
	)
}

func LocationSnapshotOf(l *location.Location) *LocationSnapshot {
	return &LocationSnapshot{
		ID:             l.ID(),
		HostID:         l.HostID(),
		Name:           l.Name(),
		Timezone:       l.Timezone(),
		Pricing:        l.Pricing(),
		Blackout:       l.Blackout(),
		InstantBooking: l.InstantBooking(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}

type ReservationSnapshot struct {
	ID         uuid.UUID
	LocationID uuid.UUID
	GuestID    uuid.UUID
	Start      time.Time
	End        time.Time
	Status     reservation.Status
	Quote      pricing.Quote
	Note       string
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *ReservationSnapshot) ToDomain() (*reservation.Reservation, error) {
	slot, err := reservation.NewTimeSlot(s.Start, s.End)
	if err != nil {
		return nil, err
	}
	if !s.Status.IsValid() {
		return nil, reservation.ErrInvalidStatus
	}
	note, err := reservation.NewNote(s.Note)
	if err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		s.ID, s.LocationID, s.GuestID, slot, s.Status, s.Quote, note, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	), nil
}

func (s *ReservationSnapshot) Record() reservation.Record {
	return reservation.Record{
		ID:        s.ID,
		Start:     s.Start,
		End:       s.End,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

const (
	IdempotencyProcessing = "processing"
	IdempotencyCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Status              string
	RequestHash         string
	Decision            string
	Reason              string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

// IdempotencyOutcome is the stored result of a completed request.
type IdempotencyOutcome struct {
	Decision            string
	Reason              string
	ResultReservationID *uuid.UUID
}

// ExpiredReservation identifies a pending reservation the sweeper cancelled.
type ExpiredReservation struct {
	ID         uuid.UUID
	LocationID uuid.UUID
	GuestID    uuid.UUID
}
