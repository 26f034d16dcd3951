package repository

import (
	"context"
	"encoding/json"
	"time"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/pkg/pgconv"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationWriteQueries interface {
	CreateReservation(ctx context.Context, db query.DBTX, arg query.CreateReservationParams) error
	UpdateReservationStatus(ctx context.Context, db query.DBTX, arg query.UpdateReservationStatusParams) (int64, error)
	ExpirePendingReservations(ctx context.Context, db query.DBTX, arg query.ExpirePendingReservationsParams) ([]query.ExpirePendingReservationsRow, error)
}

type ReservationRepository struct {
	queries ReservationWriteQueries
	db      query.DBTX
}

func NewReservationRepository(queries ReservationWriteQueries, db query.DBTX) *ReservationRepository {
	return &ReservationRepository{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	quoteJSON, err := json.Marshal(res.Quote())
	if err != nil {
		return infra.WrapRepoErr("failed to encode reservation quote", err, infra.KindDBFailure)
	}

	params := query.CreateReservationParams{
		ID:         res.ID(),
		LocationID: res.LocationID(),
		GuestID:    res.GuestID(),
		SlotStart:  pgconv.TimeToPgtype(res.TimeSlot().Start()),
		SlotEnd:    pgconv.TimeToPgtype(res.TimeSlot().End()),
		Status:     res.Status().String(),
		Quote:      quoteJSON,
		Note:       pgconv.StringToPgtype(res.Note().String()),
		ExpiresAt:  pgconv.TimePtrToPgtype(res.ExpiresAt()),
		CreatedAt:  pgconv.TimeToPgtype(res.CreatedAt()),
	}

	if err := r.queries.CreateReservation(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status, at time.Time) error {
	n, err := r.queries.UpdateReservationStatus(ctx, r.db, query.UpdateReservationStatusParams{
		ID:         id,
		FromStatus: from.String(),
		ToStatus:   to.String(),
		UpdatedAt:  pgconv.TimeToPgtype(at),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if n == 0 {
		return infra.NewRepoErr(infra.KindStale, "reservation status changed concurrently")
	}
	return nil
}

func (r *ReservationRepository) ExpirePending(ctx context.Context, locationID *uuid.UUID, now time.Time) ([]shared.ExpiredReservation, error) {
	rows, err := r.queries.ExpirePendingReservations(ctx, r.db, query.ExpirePendingReservationsParams{
		LocationID: pgconv.UUIDPtrToPgtype(locationID),
		Now:        pgconv.TimeToPgtype(now),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire pending reservations", err)
	}

	expired := make([]shared.ExpiredReservation, len(rows))
	for i, row := range rows {
		expired[i] = shared.ExpiredReservation{ID: row.ID, LocationID: row.LocationID, GuestID: row.GuestID}
	}
	return expired, nil
}
