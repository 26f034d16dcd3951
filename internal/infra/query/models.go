package query

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Locations struct {
	ID             uuid.UUID
	HostID         uuid.UUID
	Name           string
	Timezone       string
	Pricing        []byte
	InstantBooking bool
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type LocationBlackoutSlots struct {
	BlockedDate time.Time
	Hour        int16
}

type Reservations struct {
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
	UpdatedAt  pgtype.Timestamptz
}

type GetReservationByIDRow struct {
	Reservations
	LocationName string
	HostID       uuid.UUID
	Timezone     string
}

type IdempotencyKeys struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Endpoint            string
	RequestHash         string
	Status              string
	Decision            pgtype.Text
	Reason              pgtype.Text
	ResultReservationID pgtype.UUID
	ExpiresAt           pgtype.Timestamptz
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}
