package repository

import (
	"context"
	"encoding/json"
	"time"

	"space-booking/internal/domain/location"
	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type LocationWriteQueries interface {
	CreateLocation(ctx context.Context, db query.DBTX, arg query.CreateLocationParams) error
	UpdateLocationPricing(ctx context.Context, db query.DBTX, arg query.UpdateLocationPricingParams) (int64, error)
	TouchLocation(ctx context.Context, db query.DBTX, id uuid.UUID, at pgtype.Timestamptz) (int64, error)
	DeleteBlackoutDates(ctx context.Context, db query.DBTX, locationID uuid.UUID) error
	DeleteBlackoutSlots(ctx context.Context, db query.DBTX, locationID uuid.UUID) error
	InsertBlackoutDates(ctx context.Context, db query.DBTX, locationID uuid.UUID, dates []time.Time) error
	InsertBlackoutSlots(ctx context.Context, db query.DBTX, locationID uuid.UUID, dates []time.Time, hours []int16) error
}

type LocationRepository struct {
	queries LocationWriteQueries
	db      query.DBTX
}

func NewLocationRepository(queries LocationWriteQueries, db query.DBTX) *LocationRepository {
	return &LocationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *LocationRepository) Create(ctx context.Context, loc *location.Location) error {
	pricingJSON, err := json.Marshal(loc.Pricing())
	if err != nil {
		return infra.WrapRepoErr("failed to encode location pricing", err, infra.KindDBFailure)
	}

	params := query.CreateLocationParams{
		ID:             loc.ID(),
		HostID:         loc.HostID(),
		Name:           loc.Name(),
		Timezone:       loc.Timezone(),
		Pricing:        pricingJSON,
		InstantBooking: loc.InstantBooking(),
		CreatedAt:      pgconv.TimeToPgtype(loc.CreatedAt()),
	}
	if err := r.queries.CreateLocation(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to create location", err)
	}

	return r.insertBlackout(ctx, loc)
}

func (r *LocationRepository) UpdatePricing(ctx context.Context, loc *location.Location) error {
	pricingJSON, err := json.Marshal(loc.Pricing())
	if err != nil {
		return infra.WrapRepoErr("failed to encode location pricing", err, infra.KindDBFailure)
	}

	n, err := r.queries.UpdateLocationPricing(ctx, r.db, query.UpdateLocationPricingParams{
		ID:             loc.ID(),
		Pricing:        pricingJSON,
		InstantBooking: loc.InstantBooking(),
		UpdatedAt:      pgconv.TimeToPgtype(loc.UpdatedAt()),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to update location pricing", err)
	}
	if n == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	return nil
}

// ReplaceBlackout swaps the stored blackout calendar for the one on loc.
func (r *LocationRepository) ReplaceBlackout(ctx context.Context, loc *location.Location) error {
	n, err := r.queries.TouchLocation(ctx, r.db, loc.ID(), pgconv.TimeToPgtype(loc.UpdatedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to touch location", err)
	}
	if n == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "location not found")
	}

	if err := r.queries.DeleteBlackoutDates(ctx, r.db, loc.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear blackout dates", err)
	}
	if err := r.queries.DeleteBlackoutSlots(ctx, r.db, loc.ID()); err != nil {
		return infra.WrapRepoErr("failed to clear blackout slots", err)
	}
	return r.insertBlackout(ctx, loc)
}

func (r *LocationRepository) insertBlackout(ctx context.Context, loc *location.Location) error {
	b := loc.Blackout()
	if len(b.Dates) > 0 {
		dates := make([]time.Time, len(b.Dates))
		for i, d := range b.Dates {
			dates[i] = pgconv.DateToTime(d)
		}
		if err := r.queries.InsertBlackoutDates(ctx, r.db, loc.ID(), dates); err != nil {
			return infra.WrapRepoErr("failed to insert blackout dates", err)
		}
	}
	if len(b.Slots) > 0 {
		dates := make([]time.Time, len(b.Slots))
		hours := make([]int16, len(b.Slots))
		for i, s := range b.Slots {
			dates[i] = pgconv.DateToTime(s.Date)
			hours[i] = int16(s.Hour) // #nosec G115 -- hour is validated to 0..23
		}
		if err := r.queries.InsertBlackoutSlots(ctx, r.db, loc.ID(), dates, hours); err != nil {
			return infra.WrapRepoErr("failed to insert blackout slots", err)
		}
	}
	return nil
}
