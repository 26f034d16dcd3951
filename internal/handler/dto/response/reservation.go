package response

import (
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID           uuid.UUID     `json:"id"`
	LocationID   uuid.UUID     `json:"locationId"`
	LocationName string        `json:"locationName"`
	HostID       uuid.UUID     `json:"hostId"`
	GuestID      uuid.UUID     `json:"guestId"`
	Timezone     string        `json:"timezone"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Status       string        `json:"status"`
	Quote        QuoteResponse `json:"quote"`
	Note         *string       `json:"note,omitempty"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type ReservationListResponse struct {
	ID         uuid.UUID `json:"id"`
	LocationID uuid.UUID `json:"locationId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ReservationPageResponse struct {
	Items     []*ReservationListResponse `json:"items"`
	NextAfter string                     `json:"nextAfter,omitempty"`
}

// AdmissionResponse is returned for both outcomes; Reservation is set only when accepted.
type AdmissionResponse struct {
	Decision    string               `json:"decision"`
	Reason      string               `json:"reason,omitempty"`
	Replayed    bool                 `json:"replayed"`
	Reservation *ReservationResponse `json:"reservation,omitempty"`
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	return &ReservationResponse{
		ID:           rm.ID,
		LocationID:   rm.LocationID,
		LocationName: rm.LocationName,
		HostID:       rm.HostID,
		GuestID:      rm.GuestID,
		Timezone:     rm.Timezone,
		Start:        rm.Start,
		End:          rm.End,
		Status:       rm.Status,
		Quote:        FromQuote(rm.Quote),
		Note:         rm.Note,
		ExpiresAt:    rm.ExpiresAt,
		CreatedAt:    rm.CreatedAt,
		UpdatedAt:    rm.UpdatedAt,
	}
}

func FromReservationListItem(rm *queries.ReservationListItem) *ReservationListResponse {
	return &ReservationListResponse{
		ID:         rm.ID,
		LocationID: rm.LocationID,
		Start:      rm.Start,
		End:        rm.End,
		Status:     rm.Status,
		Total:      pricing.RoundHalfUp(rm.Total),
		CreatedAt:  rm.CreatedAt,
	}
}

func FromReservationPage(items []*queries.ReservationListItem, next *queries.Cursor) *ReservationPageResponse {
	out := &ReservationPageResponse{Items: make([]*ReservationListResponse, len(items))}
	for i, it := range items {
		out.Items[i] = FromReservationListItem(it)
	}
	if next != nil {
		out.NextAfter = next.After
	}
	return out
}

func FromAdmissionResult(r *commands.AdmissionResult) *AdmissionResponse {
	out := &AdmissionResponse{
		Decision: string(r.Decision),
		Reason:   string(r.Reason),
		Replayed: r.IsReplayed,
	}
	if r.Reservation != nil {
		out.Reservation = FromReservationView(r.Reservation)
	}
	return out
}
