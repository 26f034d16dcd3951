//go:build unit

package pricing_test

import (
	"testing"

	"space-booking/internal/domain/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ResolveRate(t *testing.T) {
	t.Run("table entry wins regardless of legacy fields", func(t *testing.T) {
		r := pricing.NewResolver(matrixPricing())
		assert.Equal(t, pricing.SourceMatrix, r.Source())
		assert.Equal(t, 50.0, r.ResolveRate(pricing.ActivityPhoto, pricing.TierSmall))
		assert.Equal(t, 70.0, r.ResolveRate(pricing.ActivityPhoto, pricing.TierMedium))
	})

	t.Run("missing table entry falls back to legacy", func(t *testing.T) {
		r := pricing.NewResolver(matrixPricing())
		// (30 + 20) * 1.5
		assert.InDelta(t, 75.0, r.ResolveRate(pricing.ActivityPhoto, pricing.TierLarge), 1e-9)
	})

	t.Run("zero table entry falls back to legacy", func(t *testing.T) {
		r := pricing.NewResolver(matrixPricing())
		assert.Equal(t, 30.0, r.ResolveRate(pricing.ActivityVideo, pricing.TierSmall))
	})

	t.Run("legacy only", func(t *testing.T) {
		cases := []struct {
			name     string
			legacy   pricing.LegacyPricing
			activity pricing.Activity
			tier     pricing.Tier
			want     float64
		}{
			{
				name:     "small adds no surcharge",
				legacy:   pricing.LegacyPricing{BasePrice: 40, TierSurcharges: map[pricing.Tier]float64{pricing.TierSmall: 99}},
				activity: pricing.ActivityEvent,
				tier:     pricing.TierSmall,
				want:     40,
			},
			{
				name:     "surcharge then modifier",
				legacy:   pricing.LegacyPricing{BasePrice: 40, TierSurcharges: map[pricing.Tier]float64{pricing.TierExtraLarge: 60}, ActivityModifiers: map[pricing.Activity]float64{pricing.ActivityEvent: 10}},
				activity: pricing.ActivityEvent,
				tier:     pricing.TierExtraLarge,
				want:     110,
			},
			{
				name:     "non-positive modifier ignored",
				legacy:   pricing.LegacyPricing{BasePrice: 40, ActivityModifiers: map[pricing.Activity]float64{pricing.ActivityEvent: -25}},
				activity: pricing.ActivityEvent,
				tier:     pricing.TierMedium,
				want:     40,
			},
			{
				name:     "undefined surcharge adds nothing",
				legacy:   pricing.LegacyPricing{BasePrice: 15},
				activity: pricing.ActivityMeeting,
				tier:     pricing.TierLarge,
				want:     15,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				r := pricing.NewResolver(pricing.Pricing{Legacy: tc.legacy})
				assert.Equal(t, pricing.SourceLegacy, r.Source())
				assert.InDelta(t, tc.want, r.ResolveRate(tc.activity, tc.tier), 1e-9)
			})
		}
	})
}

func TestResolver_EnabledActivities(t *testing.T) {
	t.Run("matrix lists activities with a positive table rate", func(t *testing.T) {
		r := pricing.NewResolver(matrixPricing())
		assert.Equal(t, []pricing.Activity{pricing.ActivityPhoto}, r.EnabledActivities())
	})

	t.Run("matrix ignores rates of disabled tiers", func(t *testing.T) {
		p := pricing.Pricing{
			RateTable: pricing.RateTable{
				pricing.ActivityPhoto: {pricing.TierLarge: 80},
				pricing.ActivityEvent: {pricing.TierSmall: 20},
			},
			EnabledTiers: []pricing.Tier{pricing.TierSmall},
		}
		r := pricing.NewResolver(p)
		assert.Equal(t, []pricing.Activity{pricing.ActivityEvent}, r.EnabledActivities())
	})

	t.Run("legacy uses allowed list filtered by enabled list", func(t *testing.T) {
		p := pricing.Pricing{Legacy: pricing.LegacyPricing{
			BasePrice:         20,
			AllowedActivities: []pricing.Activity{pricing.ActivityMeeting, pricing.ActivityPhoto, pricing.ActivityVideo},
			EnabledActivities: []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityMeeting},
		}}
		r := pricing.NewResolver(p)
		assert.Equal(t, []pricing.Activity{pricing.ActivityPhoto, pricing.ActivityMeeting}, r.EnabledActivities())
	})

	t.Run("legacy without a positive rate enables nothing", func(t *testing.T) {
		p := pricing.Pricing{Legacy: pricing.LegacyPricing{
			AllowedActivities: []pricing.Activity{pricing.ActivityPhoto},
		}}
		r := pricing.NewResolver(p)
		assert.Empty(t, r.EnabledActivities())

		_, err := r.Rate(pricing.ActivityPhoto, pricing.TierSmall)
		require.ErrorIs(t, err, pricing.ErrUnsupportedActivity)
	})
}

func TestPricing_Validate(t *testing.T) {
	require.NoError(t, matrixPricing().Validate())

	bad := matrixPricing()
	bad.Fees = []pricing.AdditiveFee{{Name: "x", Kind: "bogus", Amount: 1}}
	assert.ErrorIs(t, bad.Validate(), pricing.ErrInvalidPricing)

	bad = matrixPricing()
	bad.RateTable[pricing.ActivityPhoto][pricing.TierSmall] = -1
	assert.ErrorIs(t, bad.Validate(), pricing.ErrInvalidPricing)

	bad = matrixPricing()
	bad.EnabledTiers = []pricing.Tier{"huge"}
	assert.ErrorIs(t, bad.Validate(), pricing.ErrInvalidPricing)
}
