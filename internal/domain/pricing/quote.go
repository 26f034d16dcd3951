package pricing

import (
	"fmt"

	"space-booking/internal/domain/calendar"
)

// ServiceFeeRate is the platform fee applied to the fee-inclusive subtotal.
const ServiceFeeRate = 0.05

type FeeLine struct {
	Name   string  `json:"name"`
	Kind   FeeKind `json:"kind"`
	Amount float64 `json:"amount"`
}

// Quote is a price breakdown at full precision.
type Quote struct {
	Activity          Activity  `json:"activity"`
	Tier              Tier      `json:"tier"`
	HourlyRate        float64   `json:"hourlyRate"`
	DurationHours     float64   `json:"durationHours"`
	Subtotal          float64   `json:"subtotal"`
	AdditiveFees      []FeeLine `json:"additiveFees"`
	AdditiveFeesTotal float64   `json:"additiveFeesTotal"`
	ServiceFee        float64   `json:"serviceFee"`
	Total             float64   `json:"total"`
	MinimumHours      float64   `json:"minimumHours"`
	BelowMinimum      bool      `json:"belowMinimum"`
}

// Rounded returns a copy with every amount rounded half-up to two decimals.
func (q Quote) Rounded() Quote {
	out := q
	out.HourlyRate = RoundHalfUp(q.HourlyRate)
	out.Subtotal = RoundHalfUp(q.Subtotal)
	out.AdditiveFeesTotal = RoundHalfUp(q.AdditiveFeesTotal)
	out.ServiceFee = RoundHalfUp(q.ServiceFee)
	out.Total = RoundHalfUp(q.Total)
	out.AdditiveFees = make([]FeeLine, len(q.AdditiveFees))
	for i, f := range q.AdditiveFees {
		f.Amount = RoundHalfUp(f.Amount)
		out.AdditiveFees[i] = f
	}
	return out
}

type QuoteInput struct {
	Window   calendar.Window
	Tier     Tier
	Activity Activity
}

// Calculator prices windows for one location.
type Calculator struct {
	resolver     *Resolver
	fees         []AdditiveFee
	minimumHours float64
}

func NewCalculator(p Pricing) *Calculator {
	return &Calculator{
		resolver:     NewResolver(p),
		fees:         append([]AdditiveFee(nil), p.Fees...),
		minimumHours: p.MinimumHours,
	}
}

func (c *Calculator) Resolver() *Resolver { return c.resolver }

func (c *Calculator) Quote(in QuoteInput) (Quote, error) {
	if in.Window.Date.IsZero() {
		return Quote{}, fmt.Errorf("%w: missing date", calendar.ErrInvalidWindow)
	}
	hours := in.Window.DurationHours()
	if hours <= 0 {
		return Quote{}, fmt.Errorf("%w: non-positive duration", calendar.ErrInvalidWindow)
	}
	rate, err := c.resolver.Rate(in.Activity, in.Tier)
	if err != nil {
		return Quote{}, err
	}

	subtotal := rate * hours
	lines := make([]FeeLine, 0, len(c.fees))
	var feesTotal float64
	for _, f := range c.fees {
		amount := f.Amount
		if f.Kind == FeePercentage {
			amount = subtotal * f.Amount / 100
		}
		lines = append(lines, FeeLine{Name: f.Name, Kind: f.Kind, Amount: amount})
		feesTotal += amount
	}
	inclusive := subtotal + feesTotal
	serviceFee := inclusive * ServiceFeeRate

	return Quote{
		Activity:          in.Activity,
		Tier:              in.Tier,
		HourlyRate:        rate,
		DurationHours:     hours,
		Subtotal:          subtotal,
		AdditiveFees:      lines,
		AdditiveFeesTotal: feesTotal,
		ServiceFee:        serviceFee,
		Total:             inclusive + serviceFee,
		MinimumHours:      c.minimumHours,
		BelowMinimum:      hours < c.minimumHours,
	}, nil
}
