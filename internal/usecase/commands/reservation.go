package commands

import (
	"context"
	"log/slog"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationCommands interface {
	// Confirm and Decline are the host's answer to a pending request.
	Confirm(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error)
	Decline(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error)
	// Cancel is open to the guest and the host.
	Cancel(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error)
}

type reservationUseCaseImpl struct {
	uow                shared.UnitOfWork
	reservationQueries queries.ReservationQueries
	clock              clock.Clock
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	reservationQueries queries.ReservationQueries,
	clock clock.Clock,
) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:                uow,
		reservationQueries: reservationQueries,
		clock:              clock,
	}
}

type actorRole int

const (
	roleHost actorRole = 1 << iota
	roleGuest
)

func (r *reservationUseCaseImpl) Confirm(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error) {
	return r.transition(ctx, actor, id, reservation.StatusConfirmed, roleHost, TopicReservationConfirmed)
}

func (r *reservationUseCaseImpl) Decline(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error) {
	return r.transition(ctx, actor, id, reservation.StatusRejected, roleHost, TopicReservationRejected)
}

func (r *reservationUseCaseImpl) Cancel(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.ReservationView, error) {
	return r.transition(ctx, actor, id, reservation.StatusCancelled, roleHost|roleGuest, TopicReservationCancelled)
}

func (r *reservationUseCaseImpl) transition(
	ctx context.Context,
	actor, id uuid.UUID,
	next reservation.Status,
	allowed actorRole,
	topic string,
) (*queries.ReservationView, error) {
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := r.clock.Now()

		snap, err := tx.Reads().ReservationByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		loc, err := tx.Reads().LocationByID(ctx, snap.LocationID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		var role actorRole
		if actor == loc.HostID {
			role |= roleHost
		}
		if actor == snap.GuestID {
			role |= roleGuest
		}
		if role&allowed == 0 {
			return ErrReservationForbidden
		}

		res, err := snap.ToDomain()
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if next == reservation.StatusConfirmed && res.IsExpired(now) {
			return ErrReservationExpired
		}
		from := res.Status()
		if err := res.Transition(next, now); err != nil {
			return err
		}

		if err := tx.Reservations().UpdateStatus(ctx, id, from, next, now); err != nil {
			if infra.IsKind(err, infra.KindStale) {
				return ErrReservationStale
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := enqueueNotification(ctx, tx, topic, notificationPayload{
			ReservationID: res.ID(),
			LocationID:    res.LocationID(),
			GuestID:       res.GuestID(),
			Status:        next.String(),
		}, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		slog.Info("reservation status changed",
			"reservation_id", id.String(),
			"from", from.String(),
			"to", next.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Read-after-write: Get the complete reservation view from read store
	view, err := r.reservationQueries.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}
