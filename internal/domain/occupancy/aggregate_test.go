//go:build unit

package occupancy_test

import (
	"testing"
	"time"

	"space-booking/internal/domain/calendar"
	"space-booking/internal/domain/occupancy"
	"space-booking/internal/domain/reservation"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day1 = calendar.NewDate(2025, time.April, 10)
	day2 = day1.AddDays(1)
	day3 = day1.AddDays(2)
	now  = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
)

func rangeOf(t *testing.T, from, to calendar.Date) calendar.Range {
	t.Helper()
	r, err := calendar.NewRange(from, to)
	require.NoError(t, err)
	return r
}

func record(status reservation.Status, zone *time.Location, d calendar.Date, startMin int, end calendar.Date, endMin int) reservation.Record {
	return reservation.Record{
		ID:        uuid.New(),
		Start:     d.At(startMin, zone),
		End:       end.At(endMin, zone),
		Status:    status,
		CreatedAt: now,
	}
}

func window(t *testing.T, d calendar.Date, start, end string) calendar.Window {
	t.Helper()
	w, err := calendar.ParseWindow(d.String(), start, end)
	require.NoError(t, err)
	return w
}

func TestAggregate_FullVersusPartialDays(t *testing.T) {
	rng := rangeOf(t, day1, day3)
	occ := occupancy.Aggregate(occupancy.Input{
		Zone:  time.UTC,
		Range: rng,
		Reservations: []reservation.Record{
			// covers all of day1 in two back-to-back bookings
			record(reservation.StatusConfirmed, time.UTC, day1, 0, day1, 12*60),
			record(reservation.StatusCompleted, time.UTC, day1, 12*60, day2, 0),
			// leaves 23:00 free on day2
			record(reservation.StatusPending, time.UTC, day2, 0, day2, 23*60),
		},
		Now: now,
	})

	assert.Equal(t, []calendar.Date{day1}, occ.FullyBlockedDates(rng))

	days := occ.Days(rng)
	require.Len(t, days, 3)
	assert.Equal(t, occupancy.DayFull, days[0].State)
	assert.Equal(t, occupancy.DayPartial, days[1].State)
	assert.Len(t, days[1].Hours, 23)
	assert.Equal(t, occupancy.DayFree, days[2].State)

	assert.True(t, occ.IsFree(day2, 23, 24))
	assert.False(t, occ.IsFree(day2, 22, 24))
	assert.Len(t, occ.BlockedSlots(rng), 24+23)
}

func TestAggregate_Blackout(t *testing.T) {
	rng := rangeOf(t, day1, day2)
	occ := occupancy.Aggregate(occupancy.Input{
		Zone:  time.UTC,
		Range: rng,
		Blackout: occupancy.Blackout{
			Dates: []calendar.Date{day2},
			Slots: []occupancy.Slot{{Date: day1, Hour: 9}, {Date: day1, Hour: 30}},
		},
		Now: now,
	})

	want := []occupancy.Slot{{Date: day1, Hour: 9}}
	if diff := cmp.Diff(want, occ.BlockedSlots(calendar.Range{From: day1, To: day1})); diff != "" {
		t.Errorf("blocked slots mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []calendar.Date{day2}, occ.FullyBlockedDates(rng))

	conflicts := occ.Conflicts(window(t, day1, "08:30", "10:00"))
	require.Len(t, conflicts, 1)
	assert.True(t, conflicts[0].Blackout)
}

func TestAggregate_IgnoresNonOccupying(t *testing.T) {
	rng := rangeOf(t, day1, day1)
	expired := now.Add(-time.Minute)
	stale := record(reservation.StatusPending, time.UTC, day1, 9*60, day1, 11*60)
	stale.ExpiresAt = &expired

	occ := occupancy.Aggregate(occupancy.Input{
		Zone:  time.UTC,
		Range: rng,
		Reservations: []reservation.Record{
			record(reservation.StatusCancelled, time.UTC, day1, 9*60, day1, 11*60),
			record(reservation.StatusRejected, time.UTC, day1, 9*60, day1, 11*60),
			stale,
		},
		Now: now,
	})

	assert.True(t, occ.IsFree(day1, 0, 24))
	assert.Empty(t, occ.BlockedSlots(rng))
}

func TestAggregate_PartialTrailingHour(t *testing.T) {
	rng := rangeOf(t, day1, day1)
	occ := occupancy.Aggregate(occupancy.Input{
		Zone:         time.UTC,
		Range:        rng,
		Reservations: []reservation.Record{record(reservation.StatusConfirmed, time.UTC, day1, 9*60+30, day1, 11*60+15)},
		Now:          now,
	})

	assert.Equal(t, []int{9, 10, 11}, occ.OccupiedHours(day1))
	assert.True(t, occ.IsFree(day1, 12, 13))
	assert.True(t, occ.IsWindowFree(window(t, day1, "08:00", "09:00")))
	assert.False(t, occ.IsWindowFree(window(t, day1, "08:00", "09:30")))
}

func TestAggregate_CrossMidnight(t *testing.T) {
	rng := rangeOf(t, day1, day3)
	occ := occupancy.Aggregate(occupancy.Input{
		Zone:  time.UTC,
		Range: rng,
		Reservations: []reservation.Record{
			record(reservation.StatusConfirmed, time.UTC, day1, 22*60, day2, 2*60),
			record(reservation.StatusConfirmed, time.UTC, day2, 20*60, day2, 21*60),
		},
		Now: now,
	})

	assert.Equal(t, []int{22, 23}, occ.OccupiedHours(day1))
	assert.Equal(t, []int{0, 1, 20}, occ.OccupiedHours(day2))

	assert.False(t, occ.IsFree(day1, 23, 1))
	assert.True(t, occ.IsFree(day2, 22, 4))
	assert.True(t, occ.IsFree(day1, 21, 22))
	assert.True(t, occ.IsFree(day2, 21, 1))
	assert.False(t, occ.IsFree(day3, 23, 1), "day after the range is never free")

	assert.True(t, occ.IsWindowFree(window(t, day2, "21:00", "03:00")))
	assert.False(t, occ.IsWindowFree(window(t, day2, "19:30", "20:30")))
}

func TestAggregate_SpansMultipleDays(t *testing.T) {
	rng := rangeOf(t, day1, day3)
	occ := occupancy.Aggregate(occupancy.Input{
		Zone:         time.UTC,
		Range:        rng,
		Reservations: []reservation.Record{record(reservation.StatusConfirmed, time.UTC, day1, 18*60, day3, 6*60)},
		Now:          now,
	})

	assert.Equal(t, []calendar.Date{day2}, occ.FullyBlockedDates(rng))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, occ.OccupiedHours(day3))
}

func TestAggregate_UsesLocationZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	rng := rangeOf(t, day1, day2)
	// 15:00-17:00 UTC is 00:00-02:00 the next day in Tokyo
	rec := reservation.Record{
		ID:     uuid.New(),
		Start:  day1.At(15*60, time.UTC),
		End:    day1.At(17*60, time.UTC),
		Status: reservation.StatusConfirmed,
	}
	occ := occupancy.Aggregate(occupancy.Input{Zone: tokyo, Range: rng, Reservations: []reservation.Record{rec}, Now: now})

	assert.Empty(t, occ.OccupiedHours(day1))
	assert.Equal(t, []int{0, 1}, occ.OccupiedHours(day2))
}
