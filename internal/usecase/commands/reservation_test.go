//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/commands"
	"space-booking/internal/usecase/queries"
	"space-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func admitPending(t *testing.T, f *fixture, loc *shared.LocationSnapshot) *queries.ReservationView {
	t.Helper()
	result, err := f.admission.Admit(context.Background(), admitReq(loc.ID, mustWindow(t, "2026-03-10", "10:00", "12:00")))
	require.NoError(t, err)
	require.True(t, result.Accepted())
	return result.Reservation
}

func TestReservationTransitions(t *testing.T) {
	type actor int
	const (
		host actor = iota
		guest
		stranger
	)

	tests := []struct {
		name       string
		act        func(c commands.ReservationCommands, ctx context.Context, actor, id uuid.UUID) (*queries.ReservationView, error)
		by         actor
		advance    time.Duration
		wantStatus string
		wantTopic  string
		wantErr    error
	}{
		{
			name:       "host confirms",
			act:        commands.ReservationCommands.Confirm,
			by:         host,
			wantStatus: "confirmed",
			wantTopic:  commands.TopicReservationConfirmed,
		},
		{
			name:       "host declines",
			act:        commands.ReservationCommands.Decline,
			by:         host,
			wantStatus: "rejected",
			wantTopic:  commands.TopicReservationRejected,
		},
		{
			name:       "guest cancels",
			act:        commands.ReservationCommands.Cancel,
			by:         guest,
			wantStatus: "cancelled",
			wantTopic:  commands.TopicReservationCancelled,
		},
		{
			name:       "host cancels",
			act:        commands.ReservationCommands.Cancel,
			by:         host,
			wantStatus: "cancelled",
			wantTopic:  commands.TopicReservationCancelled,
		},
		{
			name:    "guest cannot confirm",
			act:     commands.ReservationCommands.Confirm,
			by:      guest,
			wantErr: commands.ErrReservationForbidden,
		},
		{
			name:    "stranger cannot cancel",
			act:     commands.ReservationCommands.Cancel,
			by:      stranger,
			wantErr: commands.ErrReservationForbidden,
		},
		{
			name:    "confirming after the response deadline",
			act:     commands.ReservationCommands.Confirm,
			by:      host,
			advance: 48 * time.Hour,
			wantErr: commands.ErrReservationExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := newLocation(nil)
			f := newFixture(t, loc)
			view := admitPending(t, f, loc)
			f.clock.Add(tt.advance)

			actorID := map[actor]uuid.UUID{host: loc.HostID, guest: view.GuestID, stranger: uuid.New()}[tt.by]
			got, err := tt.act(f.reservations, context.Background(), actorID, view.ID)

			if tt.wantErr != nil {
				assert.True(t, errs.Is(err, tt.wantErr), "got %v", err)
				assert.Len(t, f.store.Jobs(), 1)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Nil(t, got.ExpiresAt)
			jobs := topics(f.store.Jobs())
			assert.Equal(t, tt.wantTopic, jobs[len(jobs)-1])
		})
	}
}

func TestReservationTransitions_InvalidFromConfirmed(t *testing.T) {
	loc := newLocation(nil)
	f := newFixture(t, loc)
	view := admitPending(t, f, loc)

	_, err := f.reservations.Confirm(context.Background(), loc.HostID, view.ID)
	require.NoError(t, err)

	_, err = f.reservations.Decline(context.Background(), loc.HostID, view.ID)
	assert.True(t, errs.Is(err, reservation.ErrInvalidTransition))
}

func TestReservationTransitions_CancelledFreesSlot(t *testing.T) {
	loc := newLocation(nil)
	f := newFixture(t, loc)
	view := admitPending(t, f, loc)

	_, err := f.reservations.Cancel(context.Background(), view.GuestID, view.ID)
	require.NoError(t, err)

	again := admitPending(t, f, loc)
	assert.NotEqual(t, view.ID, again.ID)
}

func TestReservationTransitions_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.reservations.Cancel(context.Background(), uuid.New(), uuid.New())

	assert.True(t, errs.Is(err, commands.ErrReservationNotFound))
}
