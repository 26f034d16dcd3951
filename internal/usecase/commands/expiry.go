package commands

import (
	"context"
	"log/slog"

	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"
)

type SweepResult struct {
	Expired                []shared.ExpiredReservation
	IdempotencyKeysDeleted int64
}

// ExpiryCommands cancels pending requests the host never answered.
// Occupancy already ignores them once expired; the sweep makes it durable.
type ExpiryCommands interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

type expiryUseCaseImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	metrics shared.Metrics
}

func NewExpiryUseCase(uow shared.UnitOfWork, clock clock.Clock, metrics shared.Metrics) ExpiryCommands {
	return &expiryUseCaseImpl{
		uow:     uow,
		clock:   clock,
		metrics: metrics,
	}
}

func (e *expiryUseCaseImpl) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		*result = SweepResult{}
		now := e.clock.Now()

		expired, err := tx.Reservations().ExpirePending(ctx, nil, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, x := range expired {
			if err := enqueueNotification(ctx, tx, TopicReservationExpired, notificationPayload{
				ReservationID: x.ID,
				LocationID:    x.LocationID,
				GuestID:       x.GuestID,
				Status:        "cancelled",
			}, now); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		deleted, err := tx.Idempotency().DeleteExpired(ctx, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		result.Expired = expired
		result.IdempotencyKeysDeleted = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.ObserveExpired(len(result.Expired))
	if len(result.Expired) > 0 || result.IdempotencyKeysDeleted > 0 {
		slog.Info("expiry sweep finished",
			"expired_reservations", len(result.Expired),
			"idempotency_keys_deleted", result.IdempotencyKeysDeleted)
	}
	return result, nil
}
