package request

import (
	"strings"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
)

type FeeRequest struct {
	Name   string  `json:"name" binding:"required,max=100"`
	Kind   string  `json:"kind" binding:"required,oneof=flat percentage"`
	Amount float64 `json:"amount" binding:"gte=0"`
}

// PricingRequest is the host-facing pricing document. Unknown tiers and
// activities are rejected by the domain validation.
type PricingRequest struct {
	RateTable         map[string]map[string]float64 `json:"rateTable"`
	BasePrice         float64                       `json:"basePrice" binding:"gte=0"`
	TierSurcharges    map[string]float64            `json:"tierSurcharges"`
	ActivityModifiers map[string]float64            `json:"activityModifiers"`
	AllowedActivities []string                      `json:"allowedActivities"`
	EnabledActivities []string                      `json:"enabledActivities"`
	EnabledTiers      []string                      `json:"enabledTiers"`
	MinimumHours      float64                       `json:"minimumHours" binding:"gte=0,lte=24"`
	Fees              []FeeRequest                  `json:"fees" binding:"omitempty,max=20,dive"`
}

func (r PricingRequest) ToDomain() pricing.Pricing {
	p := pricing.Pricing{
		Legacy: pricing.LegacyPricing{
			BasePrice:         r.BasePrice,
			AllowedActivities: activities(r.AllowedActivities),
			EnabledActivities: activities(r.EnabledActivities),
		},
		MinimumHours: r.MinimumHours,
	}
	if len(r.RateTable) > 0 {
		p.RateTable = make(pricing.RateTable, len(r.RateTable))
		for a, byTier := range r.RateTable {
			rates := make(map[pricing.Tier]float64, len(byTier))
			for t, rate := range byTier {
				rates[pricing.Tier(t)] = rate
			}
			p.RateTable[pricing.Activity(a)] = rates
		}
	}
	if len(r.TierSurcharges) > 0 {
		p.Legacy.TierSurcharges = make(map[pricing.Tier]float64, len(r.TierSurcharges))
		for t, v := range r.TierSurcharges {
			p.Legacy.TierSurcharges[pricing.Tier(t)] = v
		}
	}
	if len(r.ActivityModifiers) > 0 {
		p.Legacy.ActivityModifiers = make(map[pricing.Activity]float64, len(r.ActivityModifiers))
		for a, v := range r.ActivityModifiers {
			p.Legacy.ActivityModifiers[pricing.Activity(a)] = v
		}
	}
	for _, t := range r.EnabledTiers {
		p.EnabledTiers = append(p.EnabledTiers, pricing.Tier(t))
	}
	for _, f := range r.Fees {
		p.Fees = append(p.Fees, pricing.AdditiveFee{
			Name:   strings.TrimSpace(f.Name),
			Kind:   pricing.FeeKind(f.Kind),
			Amount: f.Amount,
		})
	}
	return p
}

func activities(in []string) []pricing.Activity {
	if len(in) == 0 {
		return nil
	}
	out := make([]pricing.Activity, len(in))
	for i, a := range in {
		out[i] = pricing.Activity(a)
	}
	return out
}

type BlockedSlotRequest struct {
	Date calendar.Date `json:"date"`
	Hour *int          `json:"hour" binding:"required,gte=0,lte=23"`
}

type BlackoutRequest struct {
	BlockedDates []calendar.Date      `json:"blockedDates" binding:"omitempty,max=1000"`
	BlockedSlots []BlockedSlotRequest `json:"blockedSlots" binding:"omitempty,max=5000,dive"`
}

func (r BlackoutRequest) ToDomain() occupancy.Blackout {
	b := occupancy.Blackout{Dates: r.BlockedDates}
	for _, s := range r.BlockedSlots {
		b.Slots = append(b.Slots, occupancy.Slot{Date: s.Date, Hour: *s.Hour})
	}
	return b
}

type CreateLocationRequest struct {
	Name           string          `json:"name" binding:"required,max=255"`
	Timezone       string          `json:"timezone" binding:"required"`
	Pricing        PricingRequest  `json:"pricing"`
	Blackout       BlackoutRequest `json:"blackout"`
	InstantBooking bool            `json:"instantBooking"`
}

type UpdateRatesRequest struct {
	Pricing        PricingRequest `json:"pricing"`
	InstantBooking bool           `json:"instantBooking"`
}

// WindowRequest is a wall-clock window in the location timezone.
type WindowRequest struct {
	Date  string `json:"date" form:"date" binding:"required"`
	Start string `json:"start" form:"start" binding:"required"`
	End   string `json:"end" form:"end" binding:"required"`
}

func (r WindowRequest) ToDomain() (calendar.Window, error) {
	return calendar.ParseWindow(r.Date, r.Start, r.End)
}

type QuoteRequest struct {
	WindowRequest
	Tier     string `json:"tier" binding:"required"`
	Activity string `json:"activity" binding:"required"`
}

func (r QuoteRequest) ToDomain() (pricing.QuoteInput, error) {
	w, err := r.WindowRequest.ToDomain()
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	tier, err := pricing.ParseTier(r.Tier)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	activity, err := pricing.ParseActivity(r.Activity)
	if err != nil {
		return pricing.QuoteInput{}, err
	}
	return pricing.QuoteInput{Window: w, Tier: tier, Activity: activity}, nil
}

type AvailabilityQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

func (q AvailabilityQuery) ToDomain() (calendar.Date, calendar.Date, error) {
	from, err := calendar.ParseDate(q.From)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	to, err := calendar.ParseDate(q.To)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return from, to, nil
}
