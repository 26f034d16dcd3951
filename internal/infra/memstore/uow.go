package memstore

import (
	"context"
	"time"

	"space-booking/internal/domain/location"
	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type statusChange struct {
	from reservation.Status
	to   reservation.Status
	at   time.Time
}

// memTx stages writes and applies them on commit. Reads inside the transaction
// see the committed state overlaid with the staged writes.
type memTx struct {
	s *Store

	locations   map[uuid.UUID]*shared.LocationSnapshot
	newLocation map[uuid.UUID]bool
	creates     []*shared.ReservationSnapshot
	changes     map[uuid.UUID]statusChange
	idempotency map[idemKey]*shared.IdempotencyRecord
	idemInserts map[idemKey]time.Time
	idemDeletes []idemKey
	jobs        []NotificationJob
}

type UoW struct {
	s *Store
}

func NewUoW(s *Store) shared.UnitOfWork {
	return &UoW{s: s}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.run(ctx, fn)
}

func (u *UoW) WithinLocation(ctx context.Context, locationID uuid.UUID, fn func(ctx context.Context, tx shared.Tx) error) error {
	unlock := u.s.locks.Lock(locationID)
	defer unlock()
	return u.run(ctx, fn)
}

func (u *UoW) CommandReads() shared.CommandReads {
	return u.newTx()
}

func (u *UoW) newTx() *memTx {
	return &memTx{
		s:           u.s,
		locations:   make(map[uuid.UUID]*shared.LocationSnapshot),
		newLocation: make(map[uuid.UUID]bool),
		changes:     make(map[uuid.UUID]statusChange),
		idempotency: make(map[idemKey]*shared.IdempotencyRecord),
		idemInserts: make(map[idemKey]time.Time),
	}
}

func (u *UoW) run(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := u.newTx()
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (t *memTx) Locations() shared.LocationRepository       { return (*txLocations)(t) }
func (t *memTx) Reservations() shared.ReservationRepository { return (*txReservations)(t) }
func (t *memTx) Idempotency() shared.IdempotencyRepository  { return (*txIdempotency)(t) }
func (t *memTx) Notifications() shared.NotificationRepository {
	return (*txNotifications)(t)
}
func (t *memTx) Reads() shared.CommandReads { return t }

// commit applies the staged writes atomically, enforcing the same constraints
// the database does.
func (t *memTx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.newLocation {
		if _, ok := s.locations[id]; ok {
			return infra.NewRepoErr(infra.KindDuplicateKey, "location already exists")
		}
	}
	for id := range t.locations {
		if _, ok := s.locations[id]; !ok && !t.newLocation[id] {
			return infra.NewRepoErr(infra.KindNotFound, "location not found")
		}
	}
	for id, ch := range t.changes {
		cur, ok := s.reservations[id]
		if !ok {
			if !t.stagedCreate(id) {
				return infra.NewRepoErr(infra.KindNotFound, "reservation not found")
			}
			continue
		}
		if cur.Status != ch.from {
			return infra.NewRepoErr(infra.KindStale, "reservation status changed concurrently")
		}
	}
	for k, insertedAt := range t.idemInserts {
		if cur, ok := s.idempotency[k]; ok && cur.ExpiresAt.After(insertedAt) {
			return infra.NewRepoErr(infra.KindDuplicateKey, "idempotency key claimed concurrently")
		}
	}
	if err := t.checkOverlaps(); err != nil {
		return err
	}

	for id, loc := range t.locations {
		s.locations[id] = loc
	}
	for _, res := range t.creates {
		s.reservations[res.ID] = res
	}
	for id, ch := range t.changes {
		if res, ok := s.reservations[id]; ok {
			applyChange(res, ch)
		}
	}
	for _, k := range t.idemDeletes {
		delete(s.idempotency, k)
	}
	for k, rec := range t.idempotency {
		s.idempotency[k] = rec
	}
	for _, j := range t.jobs {
		k := jobKey{reservationID: j.ReservationID, topic: j.Topic}
		if _, dup := s.jobKeys[k]; dup {
			continue
		}
		s.jobKeys[k] = struct{}{}
		s.jobs = append(s.jobs, j)
	}
	return nil
}

func (t *memTx) stagedCreate(id uuid.UUID) bool {
	for _, r := range t.creates {
		if r.ID == id {
			return true
		}
	}
	return false
}

// checkOverlaps is the in-memory equivalent of the exclusion constraint: after the
// commit no two occupying reservations of a location may overlap. Caller holds s.mu.
func (t *memTx) checkOverlaps() error {
	for _, res := range t.creates {
		status := res.Status
		if ch, ok := t.changes[res.ID]; ok {
			status = ch.to
		}
		if !status.IsOccupying() {
			continue
		}
		for _, other := range t.s.reservations {
			if other.LocationID != res.LocationID {
				continue
			}
			otherStatus := other.Status
			if ch, ok := t.changes[other.ID]; ok {
				otherStatus = ch.to
			}
			if otherStatus.IsOccupying() && overlaps(res, other) {
				return infra.NewRepoErr(infra.KindConflict, "reservation overlaps an occupying reservation")
			}
		}
		for _, other := range t.creates {
			if other != res && other.LocationID == res.LocationID && other.Status.IsOccupying() && overlaps(res, other) {
				return infra.NewRepoErr(infra.KindConflict, "reservation overlaps an occupying reservation")
			}
		}
	}
	return nil
}

func overlaps(a, b *shared.ReservationSnapshot) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func applyChange(res *shared.ReservationSnapshot, ch statusChange) {
	res.Status = ch.to
	res.UpdatedAt = ch.at
	if ch.to != reservation.StatusPending {
		res.ExpiresAt = nil
	}
}

// --- CommandReads ---

func (t *memTx) LocationByID(_ context.Context, id uuid.UUID) (*shared.LocationSnapshot, error) {
	if loc, ok := t.locations[id]; ok {
		return copyLocation(loc)
	}
	t.s.mu.RLock()
	loc, ok := t.s.locations[id]
	t.s.mu.RUnlock()
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "location not found")
	}
	return copyLocation(loc)
}

// reservation returns the transaction's view of one reservation.
func (t *memTx) reservation(id uuid.UUID) (*shared.ReservationSnapshot, bool) {
	var res *shared.ReservationSnapshot
	for _, r := range t.creates {
		if r.ID == id {
			res = copyReservation(r)
		}
	}
	if res == nil {
		t.s.mu.RLock()
		cur, ok := t.s.reservations[id]
		if ok {
			res = copyReservation(cur)
		}
		t.s.mu.RUnlock()
		if !ok {
			return nil, false
		}
	}
	if ch, ok := t.changes[id]; ok {
		applyChange(res, ch)
	}
	return res, true
}

func (t *memTx) ReservationByID(_ context.Context, id uuid.UUID) (*shared.ReservationSnapshot, error) {
	res, ok := t.reservation(id)
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "reservation not found")
	}
	return res, nil
}

func (t *memTx) allReservations(match func(*shared.ReservationSnapshot) bool) []*shared.ReservationSnapshot {
	var out []*shared.ReservationSnapshot
	t.s.mu.RLock()
	for _, r := range t.s.reservations {
		if match(r) {
			out = append(out, copyReservation(r))
		}
	}
	t.s.mu.RUnlock()
	for _, r := range t.creates {
		if match(r) {
			out = append(out, copyReservation(r))
		}
	}
	for _, r := range out {
		if ch, ok := t.changes[r.ID]; ok {
			applyChange(r, ch)
		}
	}
	return out
}

func (t *memTx) OccupyingReservations(_ context.Context, locationID uuid.UUID, from, to time.Time) ([]reservation.Record, error) {
	rows := t.allReservations(func(r *shared.ReservationSnapshot) bool {
		return r.LocationID == locationID && r.Start.Before(to) && from.Before(r.End)
	})
	return occupyingRecords(rows), nil
}

func occupyingRecords(rows []*shared.ReservationSnapshot) []reservation.Record {
	records := make([]reservation.Record, 0, len(rows))
	for _, r := range rows {
		if r.Status.IsOccupying() {
			records = append(records, r.Record())
		}
	}
	return records
}

func (t *memTx) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	k := idemKey{key: key, userID: userID}
	if rec, ok := t.idempotency[k]; ok {
		cp := *rec
		return &cp, nil
	}
	t.s.mu.RLock()
	rec, ok := t.s.idempotency[k]
	t.s.mu.RUnlock()
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "idempotency key not found")
	}
	cp := *rec
	return &cp, nil
}

// --- repositories ---

type txLocations memTx

func (r *txLocations) Create(_ context.Context, loc *location.Location) error {
	t := (*memTx)(r)
	t.s.mu.RLock()
	_, exists := t.s.locations[loc.ID()]
	t.s.mu.RUnlock()
	if exists || t.newLocation[loc.ID()] {
		return infra.NewRepoErr(infra.KindDuplicateKey, "location already exists")
	}
	snap, err := copyLocation(shared.LocationSnapshotOf(loc))
	if err != nil {
		return err
	}
	t.locations[loc.ID()] = snap
	t.newLocation[loc.ID()] = true
	return nil
}

func (r *txLocations) UpdatePricing(ctx context.Context, loc *location.Location) error {
	t := (*memTx)(r)
	cur, err := t.LocationByID(ctx, loc.ID())
	if err != nil {
		return err
	}
	cur.Pricing = loc.Pricing()
	cur.InstantBooking = loc.InstantBooking()
	cur.UpdatedAt = loc.UpdatedAt()
	snap, err := copyLocation(cur)
	if err != nil {
		return err
	}
	t.locations[loc.ID()] = snap
	return nil
}

func (r *txLocations) ReplaceBlackout(ctx context.Context, loc *location.Location) error {
	t := (*memTx)(r)
	cur, err := t.LocationByID(ctx, loc.ID())
	if err != nil {
		return err
	}
	cur.Blackout = loc.Blackout()
	cur.UpdatedAt = loc.UpdatedAt()
	snap, err := copyLocation(cur)
	if err != nil {
		return err
	}
	t.locations[loc.ID()] = snap
	return nil
}

type txReservations memTx

func (r *txReservations) Create(_ context.Context, res *reservation.Reservation) error {
	t := (*memTx)(r)
	if _, ok := t.reservation(res.ID()); ok {
		return infra.NewRepoErr(infra.KindDuplicateKey, "reservation already exists")
	}
	t.s.mu.RLock()
	_, locOK := t.s.locations[res.LocationID()]
	t.s.mu.RUnlock()
	if !locOK && t.locations[res.LocationID()] == nil {
		return infra.NewRepoErr(infra.KindForeignKeyViolated, "location does not exist")
	}

	snap := &shared.ReservationSnapshot{
		ID:         res.ID(),
		LocationID: res.LocationID(),
		GuestID:    res.GuestID(),
		Start:      res.TimeSlot().Start(),
		End:        res.TimeSlot().End(),
		Status:     res.Status(),
		Quote:      res.Quote(),
		Note:       res.Note().String(),
		ExpiresAt:  res.ExpiresAt(),
		CreatedAt:  res.CreatedAt(),
		UpdatedAt:  res.UpdatedAt(),
	}
	snap = copyReservation(snap)

	// Fail fast like the exclusion constraint would on insert.
	t.creates = append(t.creates, snap)
	if err := t.checkOverlapsLocked(); err != nil {
		t.creates = t.creates[:len(t.creates)-1]
		return err
	}
	return nil
}

func (t *memTx) checkOverlapsLocked() error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.checkOverlaps()
}

func (r *txReservations) UpdateStatus(_ context.Context, id uuid.UUID, from, to reservation.Status, at time.Time) error {
	t := (*memTx)(r)
	cur, ok := t.reservation(id)
	if !ok {
		return infra.NewRepoErr(infra.KindStale, "reservation status changed concurrently")
	}
	if cur.Status != from {
		return infra.NewRepoErr(infra.KindStale, "reservation status changed concurrently")
	}
	if prev, ok := t.changes[id]; ok {
		from = prev.from
	}
	t.changes[id] = statusChange{from: from, to: to, at: at}
	return nil
}

func (r *txReservations) ExpirePending(_ context.Context, locationID *uuid.UUID, now time.Time) ([]shared.ExpiredReservation, error) {
	t := (*memTx)(r)
	rows := t.allReservations(func(res *shared.ReservationSnapshot) bool {
		return locationID == nil || res.LocationID == *locationID
	})

	var expired []shared.ExpiredReservation
	for _, res := range rows {
		if res.Status != reservation.StatusPending || res.ExpiresAt == nil || res.ExpiresAt.After(now) {
			continue
		}
		from := res.Status
		if prev, ok := t.changes[res.ID]; ok {
			from = prev.from
		}
		t.changes[res.ID] = statusChange{from: from, to: reservation.StatusCancelled, at: now}
		expired = append(expired, shared.ExpiredReservation{ID: res.ID, LocationID: res.LocationID, GuestID: res.GuestID})
	}
	return expired, nil
}

type txIdempotency memTx

func (r *txIdempotency) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, now, expiresAt time.Time) error {
	t := (*memTx)(r)
	cur, err := t.IdempotencyByKey(ctx, key, userID)
	if err == nil && cur.ExpiresAt.After(now) {
		return nil
	}
	k := idemKey{key: key, userID: userID}
	t.idempotency[k] = &shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	t.idemInserts[k] = now
	return nil
}

func (r *txIdempotency) Complete(ctx context.Context, key, userID uuid.UUID, outcome shared.IdempotencyOutcome, _ time.Time) error {
	t := (*memTx)(r)
	cur, err := t.IdempotencyByKey(ctx, key, userID)
	if err != nil {
		return err
	}
	cur.Status = shared.IdempotencyCompleted
	cur.Decision = outcome.Decision
	cur.Reason = outcome.Reason
	cur.ResultReservationID = outcome.ResultReservationID
	t.idempotency[idemKey{key: key, userID: userID}] = cur
	return nil
}

func (r *txIdempotency) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	t := (*memTx)(r)
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var n int64
	for k, rec := range t.s.idempotency {
		if !rec.ExpiresAt.After(now) {
			t.idemDeletes = append(t.idemDeletes, k)
			n++
		}
	}
	return n, nil
}

type txNotifications memTx

func (r *txNotifications) Enqueue(_ context.Context, job shared.NotificationJob) (bool, error) {
	t := (*memTx)(r)
	k := jobKey{reservationID: job.ReservationID, topic: job.Topic}
	t.s.mu.RLock()
	_, committed := t.s.jobKeys[k]
	t.s.mu.RUnlock()
	if committed {
		return false, nil
	}
	for _, j := range t.jobs {
		if j.ReservationID == job.ReservationID && j.Topic == job.Topic {
			return false, nil
		}
	}
	job.Payload = append([]byte(nil), job.Payload...)
	t.jobs = append(t.jobs, job)
	return true, nil
}
