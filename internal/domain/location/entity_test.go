//go:build unit

package location_test

import (
	"testing"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyPricing() pricing.Pricing {
	return pricing.Pricing{
		Legacy: pricing.LegacyPricing{
			BasePrice:         40,
			AllowedActivities: []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityEvent},
		},
		MinimumHours: 1,
	}
}

func TestNewLocation(t *testing.T) {
	cases := []struct {
		name     string
		locName  string
		timezone string
		pricing  pricing.Pricing
		errIs    error
	}{
		{name: "valid", locName: "  Loft  ", timezone: "Europe/Paris", pricing: legacyPricing()},
		{name: "blank name", locName: "  ", timezone: "UTC", pricing: legacyPricing(), errIs: location.ErrEmptyLocationName},
		{name: "unknown zone", locName: "Loft", timezone: "Mars/Olympus", pricing: legacyPricing(), errIs: location.ErrInvalidTimezone},
		{name: "missing zone", locName: "Loft", timezone: "", pricing: legacyPricing(), errIs: location.ErrInvalidTimezone},
		{
			name:     "invalid pricing",
			locName:  "Loft",
			timezone: "UTC",
			pricing:  pricing.Pricing{Legacy: pricing.LegacyPricing{BasePrice: -1}},
			errIs:    pricing.ErrInvalidPricing,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loc, err := location.NewLocation(uuid.New(), uuid.New(), tc.locName, tc.timezone, tc.pricing, occupancy.Blackout{}, false, time.Now())
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Loft", loc.Name())
			assert.Equal(t, "Europe/Paris", loc.Timezone())
		})
	}
}

func TestLocation_QuoteAndTerms(t *testing.T) {
	loc, err := location.NewLocation(uuid.New(), uuid.New(), "Studio", "UTC", legacyPricing(), occupancy.Blackout{}, true, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityEvent}, loc.EnabledActivities())
	assert.Len(t, loc.EnabledTiers(), 4)
	assert.Equal(t, reservation.LocationTerms{ID: loc.ID(), InstantBooking: true}, loc.Terms())

	w, err := calendar.ParseWindow("2025-08-01", "10:00", "12:00")
	require.NoError(t, err)
	q, err := loc.Quote(pricing.QuoteInput{Window: w, Tier: pricing.TierLarge, Activity: pricing.ActivityEvent})
	require.NoError(t, err)
	assert.InDelta(t, 84.0, q.Total, 1e-9)

	_, err = loc.Quote(pricing.QuoteInput{Window: w, Tier: pricing.TierSmall, Activity: pricing.ActivityMeeting})
	assert.ErrorIs(t, err, pricing.ErrUnsupportedActivity)
}

func TestLocation_WithPricingKeepsOriginal(t *testing.T) {
	loc, err := location.NewLocation(uuid.New(), uuid.New(), "Studio", "UTC", legacyPricing(), occupancy.Blackout{}, false, time.Now())
	require.NoError(t, err)

	updated, err := loc.WithPricing(pricing.Pricing{
		RateTable: pricing.RateTable{pricing.ActivityMeeting: {pricing.TierSmall: 12}},
	}, true, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []pricing.Activity{pricing.ActivityMeeting}, updated.EnabledActivities())
	assert.True(t, updated.InstantBooking())
	assert.Equal(t, []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityEvent}, loc.EnabledActivities())
	assert.False(t, loc.InstantBooking())
}

func TestLocation_Occupancy(t *testing.T) {
	d := calendar.NewDate(2025, time.August, 1)
	loc, err := location.NewLocation(uuid.New(), uuid.New(), "Studio", "America/New_York", legacyPricing(),
		occupancy.Blackout{Slots: []occupancy.Slot{{Date: d, Hour: 8}}}, false, time.Now())
	require.NoError(t, err)

	w, err := calendar.ParseWindow(d.String(), "09:00", "11:00")
	require.NoError(t, err)
	slot, err := loc.SlotOf(w)
	require.NoError(t, err)
	assert.Equal(t, 13, slot.Start().UTC().Hour())

	rng, err := calendar.NewRange(d, d)
	require.NoError(t, err)
	occ := loc.Occupancy(rng, []reservation.Record{{
		ID: uuid.New(), Start: slot.Start(), End: slot.End(), Status: reservation.StatusConfirmed,
	}}, time.Now())

	assert.Equal(t, []int{8, 9, 10}, occ.OccupiedHours(d))
}
