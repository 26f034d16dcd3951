package response

import "space-booking/internal/domain/pricing"

type FeeLineResponse struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// QuoteResponse carries amounts rounded half-up to cents.
type QuoteResponse struct {
	Activity          string            `json:"activity"`
	Tier              string            `json:"tier"`
	HourlyRate        float64           `json:"hourlyRate"`
	DurationHours     float64           `json:"durationHours"`
	Subtotal          float64           `json:"subtotal"`
	AdditiveFees      []FeeLineResponse `json:"additiveFees"`
	AdditiveFeesTotal float64           `json:"additiveFeesTotal"`
	ServiceFee        float64           `json:"serviceFee"`
	Total             float64           `json:"total"`
	MinimumHours      float64           `json:"minimumHours"`
	BelowMinimum      bool              `json:"belowMinimum"`
}

func FromQuote(q pricing.Quote) QuoteResponse {
	r := q.Rounded()
	fees := make([]FeeLineResponse, len(r.AdditiveFees))
	for i, f := range r.AdditiveFees {
		fees[i] = FeeLineResponse{Name: f.Name, Kind: string(f.Kind), Amount: f.Amount}
	}
	return QuoteResponse{
		Activity:          r.Activity.String(),
		Tier:              r.Tier.String(),
		HourlyRate:        r.HourlyRate,
		DurationHours:     r.DurationHours,
		Subtotal:          r.Subtotal,
		AdditiveFees:      fees,
		AdditiveFeesTotal: r.AdditiveFeesTotal,
		ServiceFee:        r.ServiceFee,
		Total:             r.Total,
		MinimumHours:      r.MinimumHours,
		BelowMinimum:      r.BelowMinimum,
	}
}
