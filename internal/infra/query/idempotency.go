package query

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// An expired key is reclaimed in place; a live key is left untouched.
const tryInsertIdempotencyKey = `
INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'processing', $5, $6, $6)
ON CONFLICT (key, user_id) DO UPDATE
SET endpoint = EXCLUDED.endpoint,
    request_hash = EXCLUDED.request_hash,
    status = 'processing',
    decision = NULL,
    reason = NULL,
    result_reservation_id = NULL,
    expires_at = EXCLUDED.expires_at,
    updated_at = EXCLUDED.updated_at
WHERE idempotency_keys.expires_at <= EXCLUDED.updated_at`

type TryInsertIdempotencyKeyParams struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	ExpiresAt   pgtype.Timestamptz
	Now         pgtype.Timestamptz
}

func (q *Queries) TryInsertIdempotencyKey(ctx context.Context, db DBTX, arg TryInsertIdempotencyKeyParams) error {
	_, err := db.Exec(ctx, tryInsertIdempotencyKey,
		arg.Key, arg.UserID, arg.Endpoint, arg.RequestHash, arg.ExpiresAt, arg.Now)
	return err
}

const getIdempotencyKey = `
SELECT key, user_id, endpoint, request_hash, status, decision, reason, result_reservation_id,
       expires_at, created_at, updated_at
FROM idempotency_keys
WHERE key = $1 AND user_id = $2`

func (q *Queries) GetIdempotencyKey(ctx context.Context, db DBTX, key, userID uuid.UUID) (IdempotencyKeys, error) {
	var k IdempotencyKeys
	err := db.QueryRow(ctx, getIdempotencyKey, key, userID).Scan(
		&k.Key, &k.UserID, &k.Endpoint, &k.RequestHash, &k.Status, &k.Decision, &k.Reason,
		&k.ResultReservationID, &k.ExpiresAt, &k.CreatedAt, &k.UpdatedAt,
	)
	return k, err
}

const completeIdempotencyKey = `
UPDATE idempotency_keys
SET status = 'completed', decision = $3, reason = $4, result_reservation_id = $5, updated_at = $6
WHERE key = $1 AND user_id = $2`

type CompleteIdempotencyKeyParams struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Decision            string
	Reason              pgtype.Text
	ResultReservationID pgtype.UUID
	UpdatedAt           pgtype.Timestamptz
}

func (q *Queries) CompleteIdempotencyKey(ctx context.Context, db DBTX, arg CompleteIdempotencyKeyParams) (int64, error) {
	tag, err := db.Exec(ctx, completeIdempotencyKey,
		arg.Key, arg.UserID, arg.Decision, arg.Reason, arg.ResultReservationID, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteExpiredIdempotencyKeys = `DELETE FROM idempotency_keys WHERE expires_at <= $1`

func (q *Queries) DeleteExpiredIdempotencyKeys(ctx context.Context, db DBTX, now pgtype.Timestamptz) (int64, error) {
	tag, err := db.Exec(ctx, deleteExpiredIdempotencyKeys, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
