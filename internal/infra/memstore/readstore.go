package memstore

import (
	"context"
	"time"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/pkg/ptr"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type LocationReadStore struct {
	s *Store
}

func NewLocationReadStore(s *Store) *LocationReadStore {
	return &LocationReadStore{s: s}
}

func (r *LocationReadStore) FindByID(_ context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	r.s.mu.RLock()
	loc, ok := r.s.locations[id]
	r.s.mu.RUnlock()
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	return copyLocation(loc)
}

type ReservationReadStore struct {
	s *Store
}

func NewReservationReadStore(s *Store) *ReservationReadStore {
	return &ReservationReadStore{s: s}
}

func (r *ReservationReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "reservation not found")
	}
	loc, ok := r.s.locations[res.LocationID]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "reservation location not found")
	}

	res = copyReservation(res)
	view := &queries.ReservationView{
		ID:           res.ID,
		LocationID:   res.LocationID,
		LocationName: loc.Name,
		HostID:       loc.HostID,
		Timezone:     loc.Timezone,
		GuestID:      res.GuestID,
		Start:        res.Start,
		End:          res.End,
		Status:       res.Status.String(),
		Quote:        res.Quote,
		Note:         ptr.NonZero(res.Note),
		ExpiresAt:    res.ExpiresAt,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
	}
	return view, nil
}

func (r *ReservationReadStore) byGuest(guestID uuid.UUID, after func(*shared.ReservationSnapshot) bool, limit int32) []*queries.ReservationListItem {
	r.s.mu.RLock()
	var rows []*shared.ReservationSnapshot
	for _, res := range r.s.reservations {
		if res.GuestID == guestID && after(res) {
			rows = append(rows, copyReservation(res))
		}
	}
	r.s.mu.RUnlock()

	sortByCreatedDesc(rows)
	if int32(len(rows)) > limit { // #nosec G115 -- bounded by the store size
		rows = rows[:limit]
	}

	items := make([]*queries.ReservationListItem, len(rows))
	for i, res := range rows {
		items[i] = &queries.ReservationListItem{
			ID:         res.ID,
			LocationID: res.LocationID,
			Start:      res.Start,
			End:        res.End,
			Status:     res.Status.String(),
			Total:      res.Quote.Total,
			CreatedAt:  res.CreatedAt,
		}
	}
	return items
}

func (r *ReservationReadStore) FindByGuestFirstPage(_ context.Context, guestID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	return r.byGuest(guestID, func(*shared.ReservationSnapshot) bool { return true }, limit), nil
}

func (r *ReservationReadStore) FindByGuestKeyset(_ context.Context, guestID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.ReservationListItem, error) {
	// cursors carry microseconds
	lastCreatedAt = lastCreatedAt.Truncate(time.Microsecond)
	return r.byGuest(guestID, func(res *shared.ReservationSnapshot) bool {
		created := res.CreatedAt.Truncate(time.Microsecond)
		if !created.Equal(lastCreatedAt) {
			return created.Before(lastCreatedAt)
		}
		return res.ID.String() < lastID.String()
	}, limit), nil
}

func (r *ReservationReadStore) FindOccupying(_ context.Context, locationID uuid.UUID, from, to time.Time) ([]reservation.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []*shared.ReservationSnapshot
	for _, res := range r.s.reservations {
		if res.LocationID == locationID && res.Start.Before(to) && from.Before(res.End) {
			rows = append(rows, res)
		}
	}
	return occupyingRecords(rows), nil
}
