package readstore

import (
	"context"
	"encoding/json"
	"time"

	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/pkg/pgconv"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type LocationReadQueries interface {
	GetLocationByID(ctx context.Context, db query.DBTX, id uuid.UUID) (query.Locations, error)
	ListBlackoutDates(ctx context.Context, db query.DBTX, locationID uuid.UUID) ([]time.Time, error)
	ListBlackoutSlots(ctx context.Context, db query.DBTX, locationID uuid.UUID) ([]query.LocationBlackoutSlots, error)
}

type LocationReadStore struct {
	queries LocationReadQueries
	db      query.DBTX
}

func NewLocationReadStore(queries LocationReadQueries, db query.DBTX) *LocationReadStore {
	return &LocationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *LocationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	row, err := r.queries.GetLocationByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("location not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find location by ID", err)
	}

	var p pricing.Pricing
	if err := json.Unmarshal(row.Pricing, &p); err != nil {
		return nil, infra.WrapRepoErr("failed to decode location pricing", err, infra.KindDBFailure)
	}

	dates, err := r.queries.ListBlackoutDates(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blackout dates", err)
	}
	slots, err := r.queries.ListBlackoutSlots(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list blackout slots", err)
	}

	blackout := occupancy.Blackout{}
	for _, d := range dates {
		blackout.Dates = append(blackout.Dates, pgconv.DateFromTime(d))
	}
	for _, s := range slots {
		blackout.Slots = append(blackout.Slots, occupancy.Slot{Date: pgconv.DateFromTime(s.BlockedDate), Hour: int(s.Hour)})
	}

	return &shared.LocationSnapshot{
		ID:             row.ID,
		HostID:         row.HostID,
		Name:           row.Name,
		Timezone:       row.Timezone,
		Pricing:        p,
		Blackout:       blackout,
		InstantBooking: row.InstantBooking,
		CreatedAt:      pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:      pgconv.TimeFromPgtype(row.UpdatedAt),
	}, nil
}
