package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// Outbox job kinds and topics consumed by the notification collaborator.
const (
	notificationKindEmail = "email"

	TopicReservationRequested = "reservation_requested"
	TopicReservationConfirmed = "reservation_confirmed"
	TopicReservationRejected  = "reservation_rejected"
	TopicReservationCancelled = "reservation_cancelled"
	TopicReservationExpired   = "reservation_expired"
)

type notificationPayload struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	LocationID    uuid.UUID `json:"location_id"`
	GuestID       uuid.UUID `json:"guest_id"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
}

func enqueueNotification(ctx context.Context, tx shared.Tx, topic string, p notificationPayload, runAt time.Time) error {
	p.Type = topic
	payload, err := json.Marshal(p)
	if err != nil {
		return errs.Wrap(err, "encode notification payload")
	}
	queued, err := tx.Notifications().Enqueue(ctx, shared.NotificationJob{
		Kind:          notificationKindEmail,
		Topic:         topic,
		ReservationID: p.ReservationID,
		Payload:       payload,
		RunAt:         runAt,
	})
	if err != nil {
		return err
	}
	if !queued {
		slog.Debug("notification already queued", "reservation_id", p.ReservationID.String(), "topic", topic)
	}
	return nil
}
