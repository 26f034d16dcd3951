// Package memstore is an in-process store for development, the CLI and tests.
// It mirrors the postgres store: admissions serialize per location and a commit
// is refused when it would create overlapping occupying reservations.
package memstore

import (
	"sort"
	"sync"

	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type idemKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type NotificationJob = shared.NotificationJob

type jobKey struct {
	reservationID uuid.UUID
	topic         string
}

type Store struct {
	mu           sync.RWMutex
	locations    map[uuid.UUID]*shared.LocationSnapshot
	reservations map[uuid.UUID]*shared.ReservationSnapshot
	idempotency  map[idemKey]*shared.IdempotencyRecord
	jobs         []NotificationJob
	jobKeys      map[jobKey]struct{}

	locks *keyedMutex
}

func New() *Store {
	return &Store{
		locations:    make(map[uuid.UUID]*shared.LocationSnapshot),
		reservations: make(map[uuid.UUID]*shared.ReservationSnapshot),
		idempotency:  make(map[idemKey]*shared.IdempotencyRecord),
		jobKeys:      make(map[jobKey]struct{}),
		locks:        newKeyedMutex(),
	}
}

// Jobs returns the notification jobs committed so far.
func (s *Store) Jobs() []NotificationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]NotificationJob(nil), s.jobs...)
}

// Seed stores locations directly, bypassing transactions.
func (s *Store) Seed(locs ...*shared.LocationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range locs {
		cp, err := copyLocation(l)
		if err != nil {
			return err
		}
		s.locations[l.ID] = cp
	}
	return nil
}

// copyLocation deep-copies so callers never share pricing maps with the store.
func copyLocation(src *shared.LocationSnapshot) (*shared.LocationSnapshot, error) {
	dst := &shared.LocationSnapshot{}
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return nil, errs.Wrap(err, "failed to copy location snapshot")
	}
	return dst, nil
}

func copyReservation(src *shared.ReservationSnapshot) *shared.ReservationSnapshot {
	dst := *src
	if src.ExpiresAt != nil {
		t := *src.ExpiresAt
		dst.ExpiresAt = &t
	}
	dst.Quote.AdditiveFees = append(dst.Quote.AdditiveFees[:0:0], src.Quote.AdditiveFees...)
	return &dst
}

func sortByCreatedDesc(items []*shared.ReservationSnapshot) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() > items[j].ID.String()
	})
}
