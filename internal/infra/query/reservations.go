package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `
r.id, r.location_id, r.guest_id, lower(r.slot), upper(r.slot), r.status, r.quote, r.note,
r.expires_at, r.created_at, r.updated_at`

func scanReservation(row pgx.Row, r *Reservations, extra ...any) error {
	dest := []any{
		&r.ID, &r.LocationID, &r.GuestID, &r.SlotStart, &r.SlotEnd, &r.Status, &r.Quote, &r.Note,
		&r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

const createReservation = `
INSERT INTO reservations (id, location_id, guest_id, slot, status, quote, note, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, tstzrange($4, $5, '[)'), $6, $7, $8, $9, $10, $10)`

type CreateReservationParams struct {
	ID         uuid.UUID
	LocationID uuid.UUID
	GuestID    uuid.UUID
	SlotStart  pgtype.Timestamptz
	SlotEnd    pgtype.Timestamptz
	Status     string
	Quote      []byte
	Note       pgtype.Text
	ExpiresAt  pgtype.Timestamptz
	CreatedAt  pgtype.Timestamptz
}

func (q *Queries) CreateReservation(ctx context.Context, db DBTX, arg CreateReservationParams) error {
	_, err := db.Exec(ctx, createReservation,
		arg.ID, arg.LocationID, arg.GuestID, arg.SlotStart, arg.SlotEnd,
		arg.Status, arg.Quote, arg.Note, arg.ExpiresAt, arg.CreatedAt,
	)
	return err
}

const getReservationByID = `
SELECT` + reservationColumns + `, l.name, l.host_id, l.timezone
FROM reservations r
JOIN locations l ON l.id = r.location_id
WHERE r.id = $1`

func (q *Queries) GetReservationByID(ctx context.Context, db DBTX, id uuid.UUID) (GetReservationByIDRow, error) {
	var row GetReservationByIDRow
	err := scanReservation(db.QueryRow(ctx, getReservationByID, id), &row.Reservations,
		&row.LocationName, &row.HostID, &row.Timezone)
	return row, err
}

const listOccupyingReservations = `
SELECT` + reservationColumns + `
FROM reservations r
WHERE r.location_id = $1
  AND r.status IN ('pending', 'confirmed', 'completed')
  AND r.slot && tstzrange($2, $3, '[)')
ORDER BY lower(r.slot)`

type ListOccupyingReservationsParams struct {
	LocationID uuid.UUID
	From       time.Time
	To         time.Time
}

func (q *Queries) ListOccupyingReservations(ctx context.Context, db DBTX, arg ListOccupyingReservationsParams) ([]Reservations, error) {
	rows, err := db.Query(ctx, listOccupyingReservations, arg.LocationID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Reservations, error) {
		var r Reservations
		err := scanReservation(row, &r)
		return r, err
	})
}

const listReservationsByGuest = `
SELECT` + reservationColumns + `
FROM reservations r
WHERE r.guest_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2`

func (q *Queries) ListReservationsByGuest(ctx context.Context, db DBTX, guestID uuid.UUID, limit int32) ([]Reservations, error) {
	rows, err := db.Query(ctx, listReservationsByGuest, guestID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Reservations, error) {
		var r Reservations
		err := scanReservation(row, &r)
		return r, err
	})
}

const listReservationsByGuestKeyset = `
SELECT` + reservationColumns + `
FROM reservations r
WHERE r.guest_id = $1
  AND (r.created_at, r.id) < ($2, $3)
ORDER BY r.created_at DESC, r.id DESC
LIMIT $4`

type ListReservationsByGuestKeysetParams struct {
	GuestID   uuid.UUID
	CreatedAt pgtype.Timestamptz
	ID        uuid.UUID
	Limit     int32
}

func (q *Queries) ListReservationsByGuestKeyset(ctx context.Context, db DBTX, arg ListReservationsByGuestKeysetParams) ([]Reservations, error) {
	rows, err := db.Query(ctx, listReservationsByGuestKeyset, arg.GuestID, arg.CreatedAt, arg.ID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Reservations, error) {
		var r Reservations
		err := scanReservation(row, &r)
		return r, err
	})
}

// Compare-and-set on status; zero rows means the reservation moved on.
const updateReservationStatus = `
UPDATE reservations
SET status = $3,
    expires_at = CASE WHEN $3 = 'pending' THEN expires_at ELSE NULL END,
    updated_at = $4
WHERE id = $1 AND status = $2`

type UpdateReservationStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
	UpdatedAt  pgtype.Timestamptz
}

func (q *Queries) UpdateReservationStatus(ctx context.Context, db DBTX, arg UpdateReservationStatusParams) (int64, error) {
	tag, err := db.Exec(ctx, updateReservationStatus, arg.ID, arg.FromStatus, arg.ToStatus, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const expirePendingReservations = `
UPDATE reservations
SET status = 'cancelled', expires_at = NULL, updated_at = $2
WHERE status = 'pending'
  AND expires_at <= $2
  AND ($1::uuid IS NULL OR location_id = $1)
RETURNING id, location_id, guest_id`

type ExpirePendingReservationsParams struct {
	LocationID pgtype.UUID
	Now        pgtype.Timestamptz
}

type ExpirePendingReservationsRow struct {
	ID         uuid.UUID
	LocationID uuid.UUID
	GuestID    uuid.UUID
}

func (q *Queries) ExpirePendingReservations(ctx context.Context, db DBTX, arg ExpirePendingReservationsParams) ([]ExpirePendingReservationsRow, error) {
	rows, err := db.Query(ctx, expirePendingReservations, arg.LocationID, arg.Now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[ExpirePendingReservationsRow])
}
