package queries

import (
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ReservationView struct {
	ID           uuid.UUID     `json:"id"`
	LocationID   uuid.UUID     `json:"location_id"`
	LocationName string        `json:"location_name"`
	HostID       uuid.UUID     `json:"host_id"`
	Timezone     string        `json:"timezone"`
	GuestID      uuid.UUID     `json:"guest_id"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Status       string        `json:"status"`
	Quote        pricing.Quote `json:"quote"`
	Note         *string       `json:"note,omitempty"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type ReservationListItem struct {
	ID         uuid.UUID `json:"id"`
	LocationID uuid.UUID `json:"location_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// AvailabilityView is the calendar of one location over a date range.
// ObservedAt is echoed back on admission to tell a lost race from a slot that was never free.
type AvailabilityView struct {
	LocationID        uuid.UUID             `json:"location_id"`
	Timezone          string                `json:"timezone"`
	From              calendar.Date         `json:"from"`
	To                calendar.Date         `json:"to"`
	BlockedSlots      []occupancy.Slot      `json:"blocked_slots"`
	FullyBlockedDates []calendar.Date       `json:"fully_blocked_dates"`
	Days              []occupancy.DayStatus `json:"days"`
	ObservedAt        time.Time             `json:"observed_at"`
}

type WindowCheckView struct {
	LocationID uuid.UUID       `json:"location_id"`
	Window     calendar.Window `json:"window"`
	Free       bool            `json:"free"`
	ObservedAt time.Time       `json:"observed_at"`
}

type ActivitiesView struct {
	LocationID uuid.UUID          `json:"location_id"`
	Activities []pricing.Activity `json:"activities"`
	Tiers      []pricing.Tier     `json:"tiers"`
}
