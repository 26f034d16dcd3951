package repository

import (
	"context"

	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/pkg/pgconv"
	"space-booking/internal/usecase/shared"
)

const notificationStatusQueued = "queued"

type NotificationWriteQueries interface {
	CreateNotificationJob(ctx context.Context, db query.DBTX, arg query.CreateNotificationJobParams) (int64, error)
}

// NotificationRepository writes the booking outbox inside the caller's transaction.
type NotificationRepository struct {
	queries NotificationWriteQueries
	db      query.DBTX
}

var _ shared.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(queries NotificationWriteQueries, db query.DBTX) *NotificationRepository {
	return &NotificationRepository{queries: queries, db: db}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, job shared.NotificationJob) (bool, error) {
	n, err := r.queries.CreateNotificationJob(ctx, r.db, query.CreateNotificationJobParams{
		Kind:          job.Kind,
		Topic:         job.Topic,
		ReservationID: job.ReservationID,
		Payload:       job.Payload,
		RunAt:         pgconv.TimeToPgtype(job.RunAt),
		Status:        notificationStatusQueued,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return n == 1, nil
}
