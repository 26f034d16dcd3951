//go:build unit

package commands_test

import (
	"context"
	"testing"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/pricing"
	"space-booking/internal/pkg/errs"
	"space-booking/internal/usecase/commands"
	"space-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	invalidated []uuid.UUID
}

func (c *recordingCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestLocationCommands_Create(t *testing.T) {
	f := newFixture(t)
	hostID := uuid.New()

	snap, err := f.locations.Create(context.Background(), commands.CreateLocationInput{
		HostID:   hostID,
		Name:     "  Warehouse Studio ",
		Timezone: "America/New_York",
		Pricing:  builder.StandardPricing(),
	})

	require.NoError(t, err)
	assert.Equal(t, "Warehouse Studio", snap.Name)
	assert.Equal(t, hostID, snap.HostID)
	assert.Equal(t, "America/New_York", snap.Timezone)

	result, err := f.admission.Admit(context.Background(), admitReq(snap.ID, mustWindow(t, "2026-03-10", "10:00", "12:00")))
	require.NoError(t, err)
	assert.True(t, result.Accepted())
	assert.Equal(t, "America/New_York", result.Reservation.Timezone)
}

func TestLocationCommands_CreateInvalid(t *testing.T) {
	tests := []struct {
		name    string
		input   commands.CreateLocationInput
		wantErr error
	}{
		{
			name:    "empty name",
			input:   commands.CreateLocationInput{HostID: uuid.New(), Name: " ", Timezone: "UTC", Pricing: builder.StandardPricing()},
			wantErr: commands.ErrDomainValidation,
		},
		{
			name:    "unknown timezone",
			input:   commands.CreateLocationInput{HostID: uuid.New(), Name: "Loft", Timezone: "Mars/Olympus", Pricing: builder.StandardPricing()},
			wantErr: commands.ErrDomainValidation,
		},
		{
			name: "blackout hour out of range",
			input: commands.CreateLocationInput{
				HostID: uuid.New(), Name: "Loft", Timezone: "UTC", Pricing: builder.StandardPricing(),
				Blackout: occupancy.Blackout{Slots: []occupancy.Slot{{Date: calendar.NewDate(2026, 3, 10), Hour: 24}}},
			},
			wantErr: occupancy.ErrInvalidBlackout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.locations.Create(context.Background(), tt.input)
			assert.True(t, errs.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLocationCommands_UpdateRates(t *testing.T) {
	loc := newLocation(nil)
	f := newFixture(t, loc)
	cache := &recordingCache{}
	f.locations = commands.NewLocationUseCase(f.uow, cache, f.clock)

	p := builder.StandardPricing()
	p.RateTable[pricing.ActivityPhoto][pricing.TierMedium] = 150
	p.Fees = nil

	snap, err := f.locations.UpdateRates(context.Background(), loc.HostID, loc.ID, p, true)
	require.NoError(t, err)
	assert.True(t, snap.InstantBooking)
	assert.Equal(t, []uuid.UUID{loc.ID}, cache.invalidated)

	result, err := f.admission.Admit(context.Background(), admitReq(loc.ID, mustWindow(t, "2026-03-10", "10:00", "12:00")))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", result.Reservation.Status)
	assert.InDelta(t, 315.0, result.Reservation.Quote.Total, 1e-9)
}

func TestLocationCommands_UpdateRatesErrors(t *testing.T) {
	loc := newLocation(nil)

	t.Run("not the host", func(t *testing.T) {
		f := newFixture(t, loc)
		_, err := f.locations.UpdateRates(context.Background(), uuid.New(), loc.ID, builder.StandardPricing(), false)
		assert.True(t, errs.Is(err, commands.ErrLocationForbidden))
	})

	t.Run("unknown location", func(t *testing.T) {
		f := newFixture(t, loc)
		_, err := f.locations.UpdateRates(context.Background(), loc.HostID, uuid.New(), builder.StandardPricing(), false)
		assert.True(t, errs.Is(err, commands.ErrLocationNotFound))
	})

	t.Run("invalid pricing", func(t *testing.T) {
		f := newFixture(t, loc)
		p := builder.StandardPricing()
		p.MinimumHours = -1
		_, err := f.locations.UpdateRates(context.Background(), loc.HostID, loc.ID, p, false)
		assert.True(t, errs.Is(err, commands.ErrDomainValidation))
	})
}

func TestLocationCommands_UpdateBlackout(t *testing.T) {
	loc := newLocation(nil)
	f := newFixture(t, loc)

	_, err := f.locations.UpdateBlackout(context.Background(), loc.HostID, loc.ID, occupancy.Blackout{
		Dates: []calendar.Date{calendar.NewDate(2026, 3, 10)},
	})
	require.NoError(t, err)

	result, err := f.admission.Admit(context.Background(), admitReq(loc.ID, mustWindow(t, "2026-03-10", "10:00", "12:00")))
	require.NoError(t, err)
	assert.Equal(t, commands.ReasonSlotNeverFree, result.Reason)

	result, err = f.admission.Admit(context.Background(), admitReq(loc.ID, mustWindow(t, "2026-03-11", "10:00", "12:00")))
	require.NoError(t, err)
	assert.True(t, result.Accepted())
}
