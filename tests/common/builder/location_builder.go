//go:build unit || e2e

package builder

import (
	"time"

	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type LocationBuilder struct {
	ID             uuid.UUID
	HostID         uuid.UUID
	Name           string
	Timezone       string
	Pricing        pricing.Pricing
	Blackout       occupancy.Blackout
	InstantBooking bool
	Now            time.Time
}

func NewLocationBuilder() *LocationBuilder {
	return &LocationBuilder{
		ID:       uuid.New(),
		HostID:   uuid.New(),
		Name:     "Sunlit Loft",
		Timezone: "UTC",
		Pricing:  StandardPricing(),
		Now:      time.Now(),
	}
}

// StandardPricing charges 100/h for medium photo shoots through the rate table,
// 40/h legacy base for everything else, a 30 flat cleaning fee and a 2h minimum.
func StandardPricing() pricing.Pricing {
	return pricing.Pricing{
		RateTable: pricing.RateTable{
			pricing.ActivityPhoto: {pricing.TierMedium: 100},
		},
		Legacy: pricing.LegacyPricing{
			BasePrice:         40,
			AllowedActivities: []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityVideo, pricing.ActivityMeeting},
		},
		MinimumHours: 2,
		Fees: []pricing.AdditiveFee{
			{Name: "cleaning", Kind: pricing.FeeFlat, Amount: 30},
		},
	}
}

func (b *LocationBuilder) With(mutate func(*LocationBuilder)) *LocationBuilder {
	mutate(b)
	return b
}

func (b *LocationBuilder) BuildDomain() (*location.Location, error) {
	return location.NewLocation(b.ID, b.HostID, b.Name, b.Timezone, b.Pricing, b.Blackout, b.InstantBooking, b.Now)
}

func (b *LocationBuilder) BuildSnapshot() *shared.LocationSnapshot {
	return &shared.LocationSnapshot{
		ID:             b.ID,
		HostID:         b.HostID,
		Name:           b.Name,
		Timezone:       b.Timezone,
		Pricing:        b.Pricing,
		Blackout:       b.Blackout,
		InstantBooking: b.InstantBooking,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}
