package queries

import (
	"context"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/location"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrLocationNotFound = errs.New("location not found")

const (
	QuoteOutcomeOK          = "ok"
	QuoteOutcomeUnsupported = "unsupported"
	QuoteOutcomeInvalid     = "invalid"
)

type LocationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, error)
}

type LocationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, error)
	Availability(ctx context.Context, locationID uuid.UUID, from, to calendar.Date) (*AvailabilityView, error)
	CheckWindow(ctx context.Context, locationID uuid.UUID, w calendar.Window) (*WindowCheckView, error)
	Activities(ctx context.Context, locationID uuid.UUID) (*ActivitiesView, error)
	Quote(ctx context.Context, locationID uuid.UUID, in pricing.QuoteInput) (pricing.Quote, error)
}

type locationQueriesImpl struct {
	locations    LocationReadStore
	reservations ReservationReadStore
	clock        clock.Clock
	metrics      shared.Metrics
}

func NewLocationQueries(
	locations LocationReadStore,
	reservations ReservationReadStore,
	clk clock.Clock,
	metrics shared.Metrics,
) LocationQueries {
	return &locationQueriesImpl{
		locations:    locations,
		reservations: reservations,
		clock:        clk,
		metrics:      metrics,
	}
}

func (q *locationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	snap, err := q.locations.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return snap, nil
}

func (q *locationQueriesImpl) Availability(ctx context.Context, locationID uuid.UUID, from, to calendar.Date) (*AvailabilityView, error) {
	rng, err := calendar.NewRange(from, to)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	loc, records, err := q.load(ctx, locationID, rng)
	if err != nil {
		return nil, err
	}

	occ := loc.Occupancy(rng, records, now)
	return &AvailabilityView{
		LocationID:        loc.ID(),
		Timezone:          loc.Timezone(),
		From:              rng.From,
		To:                rng.To,
		BlockedSlots:      occ.BlockedSlots(rng),
		FullyBlockedDates: occ.FullyBlockedDates(rng),
		Days:              occ.Days(rng),
		ObservedAt:        now,
	}, nil
}

func (q *locationQueriesImpl) CheckWindow(ctx context.Context, locationID uuid.UUID, w calendar.Window) (*WindowCheckView, error) {
	rng := calendar.Range{From: w.Date, To: w.EndDate()}

	now := q.clock.Now()
	loc, records, err := q.load(ctx, locationID, rng)
	if err != nil {
		return nil, err
	}

	return &WindowCheckView{
		LocationID: loc.ID(),
		Window:     w,
		Free:       loc.Occupancy(rng, records, now).IsWindowFree(w),
		ObservedAt: now,
	}, nil
}

func (q *locationQueriesImpl) Activities(ctx context.Context, locationID uuid.UUID) (*ActivitiesView, error) {
	snap, err := q.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	loc := snap.ToDomain()
	return &ActivitiesView{
		LocationID: loc.ID(),
		Activities: loc.EnabledActivities(),
		Tiers:      loc.EnabledTiers(),
	}, nil
}

func (q *locationQueriesImpl) Quote(ctx context.Context, locationID uuid.UUID, in pricing.QuoteInput) (pricing.Quote, error) {
	snap, err := q.GetByID(ctx, locationID)
	if err != nil {
		return pricing.Quote{}, err
	}

	quote, err := snap.ToDomain().Quote(in)
	switch {
	case err == nil:
		q.metrics.ObserveQuote(QuoteOutcomeOK)
	case errs.Is(err, pricing.ErrUnsupportedActivity), errs.Is(err, pricing.ErrUnsupportedTier):
		q.metrics.ObserveQuote(QuoteOutcomeUnsupported)
	default:
		q.metrics.ObserveQuote(QuoteOutcomeInvalid)
	}
	return quote, err
}

// load fetches the location and the reservations around rng concurrently. The
// reservation bounds are taken in UTC one day wider on each side so they cover
// rng in any zone.
func (q *locationQueriesImpl) load(ctx context.Context, locationID uuid.UUID, rng calendar.Range) (*location.Location, []reservation.Record, error) {
	var (
		snap    *shared.LocationSnapshot
		records []reservation.Record
	)
	lo, hi := rng.Expand(1).Bounds(time.UTC)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = q.GetByID(gctx, locationID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = q.reservations.FindOccupying(gctx, locationID, lo, hi)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return snap.ToDomain(), records, nil
}
