package query

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createNotificationJob = `
INSERT INTO notification_jobs (kind, topic, reservation_id, payload, run_at, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (reservation_id, topic) DO NOTHING`

type CreateNotificationJobParams struct {
	Kind          string
	Topic         string
	ReservationID uuid.UUID
	Payload       []byte
	RunAt         pgtype.Timestamptz
	Status        string
}

// CreateNotificationJob returns the number of rows inserted: 0 for a duplicate.
func (q *Queries) CreateNotificationJob(ctx context.Context, db DBTX, arg CreateNotificationJobParams) (int64, error) {
	tag, err := db.Exec(ctx, createNotificationJob, arg.Kind, arg.Topic, arg.ReservationID, arg.Payload, arg.RunAt, arg.Status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
