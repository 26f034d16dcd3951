package reservation

import (
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

const DefaultPendingTTL = 48 * time.Hour

// LocationTerms carries the location settings a new reservation depends on.
type LocationTerms struct {
	ID             uuid.UUID
	InstantBooking bool
}

type Factory struct {
	Clock      clock.Clock
	PendingTTL time.Duration
}

func NewFactory(clock clock.Clock, pendingTTL time.Duration) *Factory {
	if pendingTTL <= 0 {
		pendingTTL = DefaultPendingTTL
	}
	return &Factory{
		Clock:      clock,
		PendingTTL: pendingTTL,
	}
}

// CreateReservation builds an admitted reservation. Instant-booking locations
// confirm immediately; others hold the slot as pending until the host responds.
func (f *Factory) CreateReservation(
	terms LocationTerms,
	guestID uuid.UUID,
	slot TimeSlot,
	quote pricing.Quote,
	note Note,
) (*Reservation, error) {
	if guestID == uuid.Nil {
		return nil, ErrMissingGuest
	}
	now := f.Clock.Now()
	if slot.Start().Before(now) {
		return nil, ErrSlotInPast
	}

	status := StatusPending
	var expiresAt *time.Time
	if terms.InstantBooking {
		status = StatusConfirmed
	} else {
		deadline := now.Add(f.PendingTTL)
		expiresAt = &deadline
	}

	return &Reservation{
		id:         uuid.New(),
		locationID: terms.ID,
		guestID:    guestID,
		timeSlot:   slot,
		status:     status,
		quote:      quote,
		note:       note,
		expiresAt:  expiresAt,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}
