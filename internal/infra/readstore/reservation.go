package readstore

import (
	"context"
	"encoding/json"
	"time"

	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/pkg/pgconv"
	"space-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationViewQueries interface {
	GetReservationByID(ctx context.Context, db query.DBTX, id uuid.UUID) (query.GetReservationByIDRow, error)
	ListReservationsByGuest(ctx context.Context, db query.DBTX, guestID uuid.UUID, limit int32) ([]query.Reservations, error)
	ListReservationsByGuestKeyset(ctx context.Context, db query.DBTX, arg query.ListReservationsByGuestKeysetParams) ([]query.Reservations, error)
	ListOccupyingReservations(ctx context.Context, db query.DBTX, arg query.ListOccupyingReservationsParams) ([]query.Reservations, error)
}

type ReservationReadStore struct {
	queries ReservationViewQueries
	db      query.DBTX
}

func NewReservationReadStore(queries ReservationViewQueries, db query.DBTX) *ReservationReadStore {
	return &ReservationReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	row, err := r.queries.GetReservationByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}

	view, err := rowToReservationView(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to decode reservation quote", err, infra.KindDBFailure)
	}
	return view, nil
}

func (r *ReservationReadStore) FindByGuestFirstPage(ctx context.Context, guestID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	rows, err := r.queries.ListReservationsByGuest(ctx, r.db, guestID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations first page", err)
	}
	return toListItems(rows), nil
}

func (r *ReservationReadStore) FindByGuestKeyset(ctx context.Context, guestID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	params := query.ListReservationsByGuestKeysetParams{
		GuestID:   guestID,
		CreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		ID:        lastID,
		Limit:     limit,
	}

	rows, err := r.queries.ListReservationsByGuestKeyset(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find reservations keyset", err)
	}
	return toListItems(rows), nil
}

func (r *ReservationReadStore) FindOccupying(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]reservation.Record, error) {
	rows, err := r.queries.ListOccupyingReservations(ctx, r.db, query.ListOccupyingReservationsParams{
		LocationID: locationID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list occupying reservations", err)
	}

	records := make([]reservation.Record, len(rows))
	for i, row := range rows {
		records[i] = RowToRecord(row)
	}
	return records, nil
}

func RowToRecord(row query.Reservations) reservation.Record {
	return reservation.Record{
		ID:        row.ID,
		Start:     pgconv.TimeFromPgtype(row.SlotStart),
		End:       pgconv.TimeFromPgtype(row.SlotEnd),
		Status:    reservation.Status(row.Status),
		CreatedAt: pgconv.TimeFromPgtype(row.CreatedAt),
		ExpiresAt: pgconv.TimePtrFromPgtype(row.ExpiresAt),
	}
}

func rowToReservationView(row query.GetReservationByIDRow) (*queries.ReservationView, error) {
	var quote pricing.Quote
	if err := json.Unmarshal(row.Quote, &quote); err != nil {
		return nil, err
	}
	var note *string
	if row.Note.Valid {
		note = &row.Note.String
	}
	return &queries.ReservationView{
		ID:           row.ID,
		LocationID:   row.LocationID,
		LocationName: row.LocationName,
		HostID:       row.HostID,
		Timezone:     row.Timezone,
		GuestID:      row.GuestID,
		Start:        pgconv.TimeFromPgtype(row.SlotStart),
		End:          pgconv.TimeFromPgtype(row.SlotEnd),
		Status:       row.Status,
		Quote:        quote,
		Note:         note,
		ExpiresAt:    pgconv.TimePtrFromPgtype(row.ExpiresAt),
		CreatedAt:    pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:    pgconv.TimeFromPgtype(row.UpdatedAt),
	}, nil
}

func toListItems(rows []query.Reservations) []*queries.ReservationListItem {
	items := make([]*queries.ReservationListItem, len(rows))
	for i, row := range rows {
		// total stays zero when the stored quote is unreadable; the detail view reports the error
		var quote pricing.Quote
		_ = json.Unmarshal(row.Quote, &quote)
		items[i] = &queries.ReservationListItem{
			ID:         row.ID,
			LocationID: row.LocationID,
			Start:      pgconv.TimeFromPgtype(row.SlotStart),
			End:        pgconv.TimeFromPgtype(row.SlotEnd),
			Status:     row.Status,
			Total:      quote.Total,
			CreatedAt:  pgconv.TimeFromPgtype(row.CreatedAt),
		}
	}
	return items
}
