package request

import (
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	LocationID uuid.UUID `json:"locationId" binding:"required"`
	WindowRequest
	Tier     string  `json:"tier" binding:"required"`
	Activity string  `json:"activity" binding:"required"`
	Note     *string `json:"note,omitempty" binding:"omitempty,max=1000"`
	// ObservedAt echoes the availability view the guest booked from.
	ObservedAt *time.Time `json:"observedAt,omitempty"`
}

func (r CreateReservationRequest) ToAdmitRequest(guestID uuid.UUID, idempotencyKey *uuid.UUID) (commands.AdmitRequest, error) {
	w, err := r.WindowRequest.ToDomain()
	if err != nil {
		return commands.AdmitRequest{}, err
	}
	tier, err := pricing.ParseTier(r.Tier)
	if err != nil {
		return commands.AdmitRequest{}, err
	}
	activity, err := pricing.ParseActivity(r.Activity)
	if err != nil {
		return commands.AdmitRequest{}, err
	}

	req := commands.AdmitRequest{
		LocationID:     r.LocationID,
		GuestID:        guestID,
		Window:         w,
		Tier:           tier,
		Activity:       activity,
		IdempotencyKey: idempotencyKey,
	}
	if r.Note != nil {
		req.Note = *r.Note
	}
	if r.ObservedAt != nil {
		req.ObservedAt = *r.ObservedAt
	}
	return req, nil
}

type ListReservationsQuery struct {
	Limit int    `form:"limit" binding:"omitempty,gte=1,lte=200"`
	After string `form:"after"`
}
