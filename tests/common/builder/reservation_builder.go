//go:build unit || e2e

package builder

import (
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/pkg/ptr"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
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
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now().UTC().Truncate(time.Hour)
	start := now.Add(72 * time.Hour)
	expires := now.Add(reservation.DefaultPendingTTL)
	return &ReservationBuilder{
		ID:         uuid.New(),
		LocationID: uuid.New(),
		GuestID:    uuid.New(),
		Start:      start,
		End:        start.Add(2 * time.Hour),
		Status:     reservation.StatusPending,
		Quote: pricing.Quote{
			Activity:      pricing.ActivityPhoto,
			Tier:          pricing.TierMedium,
			HourlyRate:    100,
			DurationHours: 2,
			Subtotal:      200,
			ServiceFee:    10,
			Total:         210,
		},
		Note:      "Product shoot",
		ExpiresAt: &expires,
		CreatedAt: now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) BuildSnapshot() *shared.ReservationSnapshot {
	return &shared.ReservationSnapshot{
		ID:         b.ID,
		LocationID: b.LocationID,
		GuestID:    b.GuestID,
		Start:      b.Start,
		End:        b.End,
		Status:     b.Status,
		Quote:      b.Quote,
		Note:       b.Note,
		ExpiresAt:  b.ExpiresAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.CreatedAt,
	}
}

func (b *ReservationBuilder) BuildDomain() (*reservation.Reservation, error) {
	return b.BuildSnapshot().ToDomain()
}

func (b *ReservationBuilder) BuildRecord() reservation.Record {
	return b.BuildSnapshot().Record()
}

func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	return &queries.ReservationView{
		ID:           b.ID,
		LocationID:   b.LocationID,
		LocationName: "Sunlit Loft",
		HostID:       uuid.New(),
		Timezone:     "UTC",
		GuestID:      b.GuestID,
		Start:        b.Start,
		End:          b.End,
		Status:       string(b.Status),
		Quote:        b.Quote,
		Note:         ptr.NonZero(b.Note),
		ExpiresAt:    b.ExpiresAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.CreatedAt,
	}
}
