package shared

import (
	"context"
	"time"

	"space-booking/internal/domain/location"
	"space-booking/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinLocation: Like Within, serialized against every other WithinLocation call for the same location
	WithinLocation(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Locations() LocationRepository
	Reservations() ReservationRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	Reads() CommandReads
}

type CommandReads interface {
	LocationByID(ctx context.Context, id uuid.UUID) (*LocationSnapshot, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*ReservationSnapshot, error)
	// OccupyingReservations lists pending, confirmed and completed reservations overlapping [from, to).
	OccupyingReservations(ctx context.Context, locationID uuid.UUID, from, to time.Time) ([]reservation.Record, error)
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

type LocationRepository interface {
	Create(ctx context.Context, loc *location.Location) error
	UpdatePricing(ctx context.Context, loc *location.Location) error
	ReplaceBlackout(ctx context.Context, loc *location.Location) error
}

type ReservationRepository interface {
	// Create reports infra.KindConflict when the slot overlaps an occupying reservation.
	Create(ctx context.Context, res *reservation.Reservation) error
	// UpdateStatus only applies when the stored status still equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to reservation.Status, at time.Time) error
	// ExpirePending cancels pending reservations past their deadline. A nil location means all.
	ExpirePending(ctx context.Context, locationID *uuid.UUID, now time.Time) ([]ExpiredReservation, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) error
	Complete(ctx context.Context, key, userID uuid.UUID, outcome IdempotencyOutcome, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationJob is an outbox row committed with the booking change it announces.
type NotificationJob struct {
	Kind          string
	Topic         string
	ReservationID uuid.UUID
	Payload       []byte
	RunAt         time.Time
}

// NotificationRepository enqueues at most one job per reservation and topic;
// Enqueue reports false when the job already exists.
type NotificationRepository interface {
	Enqueue(ctx context.Context, job NotificationJob) (bool, error)
}

// LocationCache drops cached location snapshots after a write.
type LocationCache interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// Metrics receives booking outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveAdmission(decision, reason string, elapsed time.Duration)
	ObserveQuote(outcome string)
	ObserveExpired(n int)
}

type NopMetrics struct{}

func (NopMetrics) ObserveAdmission(string, string, time.Duration) {}
func (NopMetrics) ObserveQuote(string)                            {}
func (NopMetrics) ObserveExpired(int)                             {}

// NopLocationCache is used when no cache sits in front of the location store.
type NopLocationCache struct{}

func (NopLocationCache) Invalidate(context.Context, uuid.UUID) error { return nil }
