package response

import (
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type LocationResponse struct {
	ID             uuid.UUID          `json:"id"`
	HostID         uuid.UUID          `json:"hostId"`
	Name           string             `json:"name"`
	Timezone       string             `json:"timezone"`
	Pricing        pricing.Pricing    `json:"pricing"`
	Blackout       occupancy.Blackout `json:"blackout"`
	InstantBooking bool               `json:"instantBooking"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func FromLocationSnapshot(s *shared.LocationSnapshot) *LocationResponse {
	return &LocationResponse{
		ID:             s.ID,
		HostID:         s.HostID,
		Name:           s.Name,
		Timezone:       s.Timezone,
		Pricing:        s.Pricing,
		Blackout:       s.Blackout,
		InstantBooking: s.InstantBooking,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	LocationID        uuid.UUID             `json:"locationId"`
	Timezone          string                `json:"timezone"`
	From              calendar.Date         `json:"from"`
	To                calendar.Date         `json:"to"`
	BlockedSlots      []occupancy.Slot      `json:"blockedSlots"`
	FullyBlockedDates []calendar.Date       `json:"fullyBlockedDates"`
	Days              []occupancy.DayStatus `json:"days"`
	ObservedAt        time.Time             `json:"observedAt"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	out := &AvailabilityResponse{
		LocationID:        v.LocationID,
		Timezone:          v.Timezone,
		From:              v.From,
		To:                v.To,
		BlockedSlots:      v.BlockedSlots,
		FullyBlockedDates: v.FullyBlockedDates,
		Days:              v.Days,
		ObservedAt:        v.ObservedAt,
	}
	// Empty arrays rather than null keep clients simple.
	if out.BlockedSlots == nil {
		out.BlockedSlots = []occupancy.Slot{}
	}
	if out.FullyBlockedDates == nil {
		out.FullyBlockedDates = []calendar.Date{}
	}
	return out
}

type WindowCheckResponse struct {
	LocationID uuid.UUID `json:"locationId"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Free       bool      `json:"free"`
	ObservedAt time.Time `json:"observedAt"`
}

func FromWindowCheckView(v *queries.WindowCheckView) *WindowCheckResponse {
	return &WindowCheckResponse{
		LocationID: v.LocationID,
		Date:       v.Window.Date.String(),
		Start:      v.Window.Start.String(),
		End:        v.Window.End.String(),
		Free:       v.Free,
		ObservedAt: v.ObservedAt,
	}
}

type ActivitiesResponse struct {
	LocationID uuid.UUID `json:"locationId"`
	Activities []string  `json:"activities"`
	Tiers      []string  `json:"tiers"`
}

func FromActivitiesView(v *queries.ActivitiesView) *ActivitiesResponse {
	out := &ActivitiesResponse{
		LocationID: v.LocationID,
		Activities: make([]string, len(v.Activities)),
		Tiers:      make([]string, len(v.Tiers)),
	}
	for i, a := range v.Activities {
		out.Activities[i] = a.String()
	}
	for i, t := range v.Tiers {
		out.Tiers[i] = t.String()
	}
	return out
}
