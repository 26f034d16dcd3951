package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/location"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/pkg/clock"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const admissionEndpoint = "POST /api/reservations"

type Decision string

const (
	DecisionAccepted Decision = "ACCEPTED"
	DecisionRejected Decision = "REJECTED"
)

type RejectReason string

const (
	// ReasonSlotJustTaken: the window was free when the guest looked but another
	// admission won it since. Retrying against a refreshed calendar may succeed.
	ReasonSlotJustTaken RejectReason = "OVERLAP_SLOT_JUST_TAKEN"
	// ReasonSlotNeverFree: the window was already blocked when the guest looked.
	ReasonSlotNeverFree RejectReason = "OVERLAP_SLOT_NEVER_FREE"
)

// errSlotRace signals the storage overlap guard fired; the transaction is rolled back.
var errSlotRace = errs.New("slot taken by a concurrent admission")

type AdmitRequest struct {
	LocationID uuid.UUID
	GuestID    uuid.UUID
	Window     calendar.Window
	Tier       pricing.Tier
	Activity   pricing.Activity
	Note       string
	// ObservedAt is when the guest's availability view was computed. Zero means now.
	ObservedAt     time.Time
	IdempotencyKey *uuid.UUID
}

type AdmissionResult struct {
	Decision    Decision
	Reason      RejectReason
	Reservation *queries.ReservationView
	IsReplayed  bool
}

func (r *AdmissionResult) Accepted() bool {
	return r.Decision == DecisionAccepted
}

type AdmissionCommands interface {
	Admit(ctx context.Context, req AdmitRequest) (*AdmissionResult, error)
}

type admissionUseCaseImpl struct {
	uow                shared.UnitOfWork
	reservationFactory *reservation.Factory
	reservationQueries queries.ReservationQueries
	clock              clock.Clock
	metrics            shared.Metrics
	idempotencyTTL     time.Duration
}

func NewAdmissionUseCase(
	uow shared.UnitOfWork,
	reservationFactory *reservation.Factory,
	reservationQueries queries.ReservationQueries,
	clock clock.Clock,
	metrics shared.Metrics,
	idempotencyTTL time.Duration,
) AdmissionCommands {
	if idempotencyTTL <= 0 {
		idempotencyTTL = 24 * time.Hour
	}
	return &admissionUseCaseImpl{
		uow:                uow,
		reservationFactory: reservationFactory,
		reservationQueries: reservationQueries,
		clock:              clock,
		metrics:            metrics,
		idempotencyTTL:     idempotencyTTL,
	}
}

// outcome is what the transaction decided, before the read-after-write.
type outcome struct {
	decision      Decision
	reason        RejectReason
	reservationID *uuid.UUID
	replayed      bool
}

// Admit re-checks the exact window against current occupancy while holding the
// location, and writes the reservation only if it is still free.
func (a *admissionUseCaseImpl) Admit(ctx context.Context, req AdmitRequest) (*AdmissionResult, error) {
	started := time.Now()
	requestHash := admissionHash(req)

	var out outcome
	err := a.uow.WithinLocation(ctx, req.LocationID, func(ctx context.Context, tx shared.Tx) error {
		out = outcome{}
		now := a.clock.Now()

		if req.IdempotencyKey != nil {
			replay, err := a.claimIdempotencyKey(ctx, tx, *req.IdempotencyKey, req.GuestID, requestHash, now)
			if err != nil {
				return err
			}
			if replay != nil {
				out = *replay
				return nil
			}
		}

		decided, err := a.admitLocked(ctx, tx, req, now)
		if err != nil {
			return err
		}
		out = decided

		if req.IdempotencyKey != nil {
			stored := shared.IdempotencyOutcome{
				Decision:            string(out.decision),
				Reason:              string(out.reason),
				ResultReservationID: out.reservationID,
			}
			if err := tx.Idempotency().Complete(ctx, *req.IdempotencyKey, req.GuestID, stored, now); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		return nil
	})

	switch {
	case errs.Is(err, errSlotRace):
		// The rolled-back attempt leaves no idempotency record; a retry re-runs admission.
		out = outcome{decision: DecisionRejected, reason: ReasonSlotJustTaken}
	case infra.IsKind(err, infra.KindDuplicateKey):
		err = errs.Mark(err, ErrIdempotencyInProgress)
	}
	if err != nil && !errs.Is(err, errSlotRace) {
		a.metrics.ObserveAdmission("error", "", time.Since(started))
		return nil, err
	}

	a.metrics.ObserveAdmission(string(out.decision), string(out.reason), time.Since(started))
	result := &AdmissionResult{
		Decision:   out.decision,
		Reason:     out.reason,
		IsReplayed: out.replayed,
	}
	if out.decision == DecisionRejected {
		slog.Info("admission rejected",
			"location_id", req.LocationID.String(),
			"window", req.Window.String(),
			"reason", string(out.reason),
			"replayed", out.replayed)
		return result, nil
	}

	// Read-after-write: Get the complete reservation view from read store
	view, err := a.reservationQueries.GetByIDSystem(ctx, *out.reservationID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	result.Reservation = view
	slog.Info("admission accepted",
		"location_id", req.LocationID.String(),
		"reservation_id", view.ID.String(),
		"status", view.Status,
		"replayed", out.replayed)
	return result, nil
}

func (a *admissionUseCaseImpl) admitLocked(ctx context.Context, tx shared.Tx, req AdmitRequest, now time.Time) (outcome, error) {
	loc, err := a.loadLocation(ctx, tx, req.LocationID)
	if err != nil {
		return outcome{}, err
	}

	quote, err := loc.Quote(pricing.QuoteInput{Window: req.Window, Tier: req.Tier, Activity: req.Activity})
	if err != nil {
		return outcome{}, err
	}
	slot, err := loc.SlotOf(req.Window)
	if err != nil {
		return outcome{}, errs.Mark(err, ErrDomainValidation)
	}
	note, err := reservation.NewNote(req.Note)
	if err != nil {
		return outcome{}, errs.Mark(err, ErrDomainValidation)
	}

	// Expired pending holds still count for the storage overlap guard, so release them first.
	if _, err := tx.Reservations().ExpirePending(ctx, &req.LocationID, now); err != nil {
		return outcome{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	rng := calendar.Range{From: req.Window.Date, To: req.Window.EndDate()}
	lo, hi := rng.Expand(1).Bounds(time.UTC)
	records, err := tx.Reads().OccupyingReservations(ctx, req.LocationID, lo, hi)
	if err != nil {
		return outcome{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	occ := loc.Occupancy(rng, records, now)
	if !occ.IsWindowFree(req.Window) {
		observedAt := req.ObservedAt
		if observedAt.IsZero() || observedAt.After(now) {
			observedAt = now
		}
		return outcome{decision: DecisionRejected, reason: classifyConflict(occ.Conflicts(req.Window), observedAt)}, nil
	}

	res, err := a.reservationFactory.CreateReservation(loc.Terms(), req.GuestID, slot, quote, note)
	if err != nil {
		return outcome{}, errs.Mark(err, ErrDomainValidation)
	}
	if err := tx.Reservations().Create(ctx, res); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return outcome{}, errs.Mark(err, errSlotRace)
		}
		return outcome{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	topic := TopicReservationRequested
	if res.Status() == reservation.StatusConfirmed {
		topic = TopicReservationConfirmed
	}
	if err := enqueueNotification(ctx, tx, topic, notificationPayload{
		ReservationID: res.ID(),
		LocationID:    res.LocationID(),
		GuestID:       res.GuestID(),
		Status:        res.Status().String(),
	}, now); err != nil {
		return outcome{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	id := res.ID()
	return outcome{decision: DecisionAccepted, reservationID: &id}, nil
}

// loadLocation reads through the transaction, never a cache, so pricing and
// blackouts are current for the decision.
func (a *admissionUseCaseImpl) loadLocation(ctx context.Context, tx shared.Tx, id uuid.UUID) (*location.Location, error) {
	snap, err := tx.Reads().LocationByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return snap.ToDomain(), nil
}

// claimIdempotencyKey returns the stored outcome when the key already completed.
func (a *admissionUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key, userID uuid.UUID,
	requestHash string,
	now time.Time,
) (*outcome, error) {
	if err := tx.Idempotency().TryInsert(ctx, key, userID, admissionEndpoint, requestHash, now, now.Add(a.idempotencyTTL)); err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	existing, err := tx.Reads().IdempotencyByKey(ctx, key, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}

	switch existing.Status {
	case shared.IdempotencyProcessing:
		// Claimed by this transaction.
		return nil, nil
	case shared.IdempotencyCompleted:
		replay := &outcome{
			decision:      Decision(existing.Decision),
			reason:        RejectReason(existing.Reason),
			reservationID: existing.ResultReservationID,
			replayed:      true,
		}
		if replay.decision == DecisionAccepted && replay.reservationID == nil {
			return nil, errs.New("completed request missing result reservation ID")
		}
		return replay, nil
	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

// classifyConflict tells a lost race from a window that was blocked all along.
func classifyConflict(holders []occupancy.Holder, observedAt time.Time) RejectReason {
	for _, h := range holders {
		if !h.Blackout && h.CreatedAt.After(observedAt) {
			return ReasonSlotJustTaken
		}
	}
	return ReasonSlotNeverFree
}

func admissionHash(req AdmitRequest) string {
	data, _ := json.Marshal(struct {
		LocationID uuid.UUID        `json:"location_id"`
		Window     calendar.Window  `json:"window"`
		Tier       pricing.Tier     `json:"tier"`
		Activity   pricing.Activity `json:"activity"`
		Note       string           `json:"note"`
	}{req.LocationID, req.Window, req.Tier, req.Activity, req.Note})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
