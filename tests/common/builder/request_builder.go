//go:build unit || e2e

package builder

import (
	reqdto "space-booking/internal/handler/dto/request"

	"github.com/google/uuid"
)

// NewCreateReservationRequest books 10:00-12:00 on date for a medium photo shoot.
func NewCreateReservationRequest(locationID uuid.UUID, date string) reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		LocationID:    locationID,
		WindowRequest: reqdto.WindowRequest{Date: date, Start: "10:00", End: "12:00"},
		Tier:          "medium",
		Activity:      "photo",
	}
}

func NewQuoteRequest(date string) reqdto.QuoteRequest {
	return reqdto.QuoteRequest{
		WindowRequest: reqdto.WindowRequest{Date: date, Start: "10:00", End: "12:00"},
		Tier:          "medium",
		Activity:      "photo",
	}
}

func NewCreateLocationRequest() reqdto.CreateLocationRequest {
	return reqdto.CreateLocationRequest{
		Name:     "Sunlit Loft",
		Timezone: "UTC",
		Pricing: reqdto.PricingRequest{
			RateTable:         map[string]map[string]float64{"photo": {"medium": 100}},
			BasePrice:         40,
			AllowedActivities: []string{"photo", "video", "meeting"},
			MinimumHours:      2,
			Fees:              []reqdto.FeeRequest{{Name: "cleaning", Kind: "flat", Amount: 30}},
		},
	}
}
