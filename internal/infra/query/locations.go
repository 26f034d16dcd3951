package query

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createLocation = `
INSERT INTO locations (id, host_id, name, timezone, pricing, instant_booking, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`

type CreateLocationParams struct {
	ID             uuid.UUID
	HostID         uuid.UUID
	Name           string
	Timezone       string
	Pricing        []byte
	InstantBooking bool
	CreatedAt      pgtype.Timestamptz
}

func (q *Queries) CreateLocation(ctx context.Context, db DBTX, arg CreateLocationParams) error {
	_, err := db.Exec(ctx, createLocation,
		arg.ID, arg.HostID, arg.Name, arg.Timezone, arg.Pricing, arg.InstantBooking, arg.CreatedAt)
	return err
}

const getLocationByID = `
SELECT id, host_id, name, timezone, pricing, instant_booking, created_at, updated_at
FROM locations
WHERE id = $1`

func (q *Queries) GetLocationByID(ctx context.Context, db DBTX, id uuid.UUID) (Locations, error) {
	var l Locations
	err := db.QueryRow(ctx, getLocationByID, id).Scan(
		&l.ID, &l.HostID, &l.Name, &l.Timezone, &l.Pricing, &l.InstantBooking, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

const updateLocationPricing = `
UPDATE locations
SET pricing = $2, instant_booking = $3, updated_at = $4
WHERE id = $1`

type UpdateLocationPricingParams struct {
	ID             uuid.UUID
	Pricing        []byte
	InstantBooking bool
	UpdatedAt      pgtype.Timestamptz
}

func (q *Queries) UpdateLocationPricing(ctx context.Context, db DBTX, arg UpdateLocationPricingParams) (int64, error) {
	tag, err := db.Exec(ctx, updateLocationPricing, arg.ID, arg.Pricing, arg.InstantBooking, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const touchLocation = `UPDATE locations SET updated_at = $2 WHERE id = $1`

func (q *Queries) TouchLocation(ctx context.Context, db DBTX, id uuid.UUID, at pgtype.Timestamptz) (int64, error) {
	tag, err := db.Exec(ctx, touchLocation, id, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Serializes admissions per location until the surrounding transaction ends.
const lockLocation = `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`

func (q *Queries) LockLocation(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, lockLocation, id.String())
	return err
}

const listBlackoutDates = `
SELECT blocked_date FROM location_blackout_dates
WHERE location_id = $1
ORDER BY blocked_date`

func (q *Queries) ListBlackoutDates(ctx context.Context, db DBTX, locationID uuid.UUID) ([]time.Time, error) {
	rows, err := db.Query(ctx, listBlackoutDates, locationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

const listBlackoutSlots = `
SELECT blocked_date, hour FROM location_blackout_slots
WHERE location_id = $1
ORDER BY blocked_date, hour`

func (q *Queries) ListBlackoutSlots(ctx context.Context, db DBTX, locationID uuid.UUID) ([]LocationBlackoutSlots, error) {
	rows, err := db.Query(ctx, listBlackoutSlots, locationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LocationBlackoutSlots, error) {
		var s LocationBlackoutSlots
		err := row.Scan(&s.BlockedDate, &s.Hour)
		return s, err
	})
}

const deleteBlackoutDates = `DELETE FROM location_blackout_dates WHERE location_id = $1`

func (q *Queries) DeleteBlackoutDates(ctx context.Context, db DBTX, locationID uuid.UUID) error {
	_, err := db.Exec(ctx, deleteBlackoutDates, locationID)
	return err
}

const deleteBlackoutSlots = `DELETE FROM location_blackout_slots WHERE location_id = $1`

func (q *Queries) DeleteBlackoutSlots(ctx context.Context, db DBTX, locationID uuid.UUID) error {
	_, err := db.Exec(ctx, deleteBlackoutSlots, locationID)
	return err
}

const insertBlackoutDates = `
INSERT INTO location_blackout_dates (location_id, blocked_date)
SELECT $1, d FROM unnest($2::date[]) AS d
ON CONFLICT DO NOTHING`

func (q *Queries) InsertBlackoutDates(ctx context.Context, db DBTX, locationID uuid.UUID, dates []time.Time) error {
	_, err := db.Exec(ctx, insertBlackoutDates, locationID, dates)
	return err
}

const insertBlackoutSlots = `
INSERT INTO location_blackout_slots (location_id, blocked_date, hour)
SELECT $1, s.d, s.h FROM unnest($2::date[], $3::smallint[]) AS s(d, h)
ON CONFLICT DO NOTHING`

func (q *Queries) InsertBlackoutSlots(ctx context.Context, db DBTX, locationID uuid.UUID, dates []time.Time, hours []int16) error {
	_, err := db.Exec(ctx, insertBlackoutSlots, locationID, dates, hours)
	return err
}
