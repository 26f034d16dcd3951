package commands

import (
	"context"
	"log/slog"

	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/infra"
	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateLocationInput struct {
	HostID         uuid.UUID
	Name           string
	Timezone       string
	Pricing        pricing.Pricing
	Blackout       occupancy.Blackout
	InstantBooking bool
}

type LocationCommands interface {
	Create(ctx context.Context, in CreateLocationInput) (*shared.LocationSnapshot, error)
	UpdateRates(ctx context.Context, actor, id uuid.UUID, p pricing.Pricing, instantBooking bool) (*shared.LocationSnapshot, error)
	UpdateBlackout(ctx context.Context, actor, id uuid.UUID, b occupancy.Blackout) (*shared.LocationSnapshot, error)
}

type locationUseCaseImpl struct {
	uow   shared.UnitOfWork
	cache shared.LocationCache
	clock clock.Clock
}

func NewLocationUseCase(uow shared.UnitOfWork, cache shared.LocationCache, clock clock.Clock) LocationCommands {
	return &locationUseCaseImpl{
		uow:   uow,
		cache: cache,
		clock: clock,
	}
}

func (l *locationUseCaseImpl) Create(ctx context.Context, in CreateLocationInput) (*shared.LocationSnapshot, error) {
	loc, err := location.NewLocation(uuid.New(), in.HostID, in.Name, in.Timezone, in.Pricing, in.Blackout, in.InstantBooking, l.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = l.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Locations().Create(ctx, loc); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("location created", "location_id", loc.ID().String(), "host_id", loc.HostID().String())
	return shared.LocationSnapshotOf(loc), nil
}

func (l *locationUseCaseImpl) UpdateRates(ctx context.Context, actor, id uuid.UUID, p pricing.Pricing, instantBooking bool) (*shared.LocationSnapshot, error) {
	return l.update(ctx, actor, id, func(tx shared.Tx, cur *location.Location) (*location.Location, error) {
		next, err := cur.WithPricing(p, instantBooking, l.clock.Now())
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Locations().UpdatePricing(ctx, next); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return next, nil
	})
}

func (l *locationUseCaseImpl) UpdateBlackout(ctx context.Context, actor, id uuid.UUID, b occupancy.Blackout) (*shared.LocationSnapshot, error) {
	return l.update(ctx, actor, id, func(tx shared.Tx, cur *location.Location) (*location.Location, error) {
		next, err := cur.WithBlackout(b, l.clock.Now())
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Locations().ReplaceBlackout(ctx, next); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return next, nil
	})
}

// update runs under the location's admission lock so an admission never prices
// against half-written settings.
func (l *locationUseCaseImpl) update(
	ctx context.Context,
	actor, id uuid.UUID,
	apply func(tx shared.Tx, cur *location.Location) (*location.Location, error),
) (*shared.LocationSnapshot, error) {
	var updated *location.Location
	err := l.uow.WithinLocation(ctx, id, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().LocationByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrLocationNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if snap.HostID != actor {
			return ErrLocationForbidden
		}

		updated, err = apply(tx, snap.ToDomain())
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := l.cache.Invalidate(ctx, id); err != nil {
		slog.Warn("failed to invalidate location cache", "location_id", id.String(), "error", err.Error())
	}
	return shared.LocationSnapshotOf(updated), nil
}
