//go:build unit

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"space-booking/internal/domain/reservation"
	"space-booking/internal/infra"
	"space-booking/internal/infra/query"
	"space-booking/internal/infra/repository"
	"space-booking/tests/common/builder"
	repositorymock "space-booking/tests/mock/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// =============================================================================
// Create Reservation Tests
// =============================================================================

func TestReservationRepository_Create(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		queryErr   error
		expectKind infra.RepositoryErrorKind
	}{
		{
			name: "success: reservation created",
		},
		{
			name:       "error: slot overlaps an occupying reservation",
			queryErr:   &pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"},
			expectKind: infra.KindConflict,
		},
		{
			name:       "error: location does not exist",
			queryErr:   &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"},
			expectKind: infra.KindForeignKeyViolated,
		},
		{
			name:       "error: database error occurs",
			queryErr:   errors.New("database connection error"),
			expectKind: infra.KindDBFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockQueries := repositorymock.NewMockReservationWriteQueries(ctrl)
			mockDB := &mockDBTX{}
			repo := repository.NewReservationRepository(mockQueries, mockDB)

			res, err := builder.NewReservationBuilder().BuildDomain()
			require.NoError(t, err)

			mockQueries.EXPECT().CreateReservation(ctx, mockDB, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ query.DBTX, arg query.CreateReservationParams) error {
					assert.Equal(t, res.ID(), arg.ID)
					assert.Equal(t, "pending", arg.Status)
					assert.True(t, arg.ExpiresAt.Valid)
					assert.Equal(t, res.TimeSlot().Start(), arg.SlotStart.Time)
					assert.JSONEq(t, `{"activity":"photo","tier":"medium"}`, subsetJSON(t, arg.Quote, "activity", "tier"))
					return tc.queryErr
				})

			actualError := repo.Create(ctx, res)

			if tc.expectKind != "" {
				require.Error(t, actualError)
				assert.True(t, infra.IsKind(actualError, tc.expectKind), "expected kind [%v] but got [%T] (%v)", tc.expectKind, actualError, actualError)
			} else {
				assert.NoError(t, actualError)
			}
		})
	}
}

// =============================================================================
// UpdateStatus Tests
// =============================================================================

func TestReservationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	at := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		rows       int64
		queryErr   error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: status moved", rows: 1},
		{name: "error: status already changed", rows: 0, expectKind: infra.KindStale},
		{name: "error: database error occurs", queryErr: errors.New("boom"), expectKind: infra.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockQueries := repositorymock.NewMockReservationWriteQueries(ctrl)
			mockDB := &mockDBTX{}
			repo := repository.NewReservationRepository(mockQueries, mockDB)

			mockQueries.EXPECT().UpdateReservationStatus(ctx, mockDB, query.UpdateReservationStatusParams{
				ID:         id,
				FromStatus: "pending",
				ToStatus:   "confirmed",
				UpdatedAt:  pgTime(at),
			}).Return(tc.rows, tc.queryErr)

			actualError := repo.UpdateStatus(ctx, id, reservation.StatusPending, reservation.StatusConfirmed, at)

			if tc.expectKind != "" {
				require.Error(t, actualError)
				assert.True(t, infra.IsKind(actualError, tc.expectKind), "expected kind [%v] but got (%v)", tc.expectKind, actualError)
			} else {
				assert.NoError(t, actualError)
			}
		})
	}
}

// =============================================================================
// ExpirePending Tests
// =============================================================================

func TestReservationRepository_ExpirePending(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	locationID := uuid.New()

	t.Run("success: scoped to one location", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockQueries := repositorymock.NewMockReservationWriteQueries(ctrl)
		mockDB := &mockDBTX{}
		repo := repository.NewReservationRepository(mockQueries, mockDB)

		row := query.ExpirePendingReservationsRow{ID: uuid.New(), LocationID: locationID, GuestID: uuid.New()}
		mockQueries.EXPECT().ExpirePendingReservations(ctx, mockDB, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ query.DBTX, arg query.ExpirePendingReservationsParams) ([]query.ExpirePendingReservationsRow, error) {
				assert.True(t, arg.LocationID.Valid)
				assert.Equal(t, [16]byte(locationID), arg.LocationID.Bytes)
				assert.Equal(t, now, arg.Now.Time)
				return []query.ExpirePendingReservationsRow{row}, nil
			})

		expired, err := repo.ExpirePending(ctx, &locationID, now)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, row.ID, expired[0].ID)
		assert.Equal(t, row.GuestID, expired[0].GuestID)
	})

	t.Run("success: all locations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockQueries := repositorymock.NewMockReservationWriteQueries(ctrl)
		mockDB := &mockDBTX{}
		repo := repository.NewReservationRepository(mockQueries, mockDB)

		mockQueries.EXPECT().ExpirePendingReservations(ctx, mockDB, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ query.DBTX, arg query.ExpirePendingReservationsParams) ([]query.ExpirePendingReservationsRow, error) {
				assert.False(t, arg.LocationID.Valid)
				return nil, nil
			})

		expired, err := repo.ExpirePending(ctx, nil, now)
		require.NoError(t, err)
		assert.Empty(t, expired)
	})
}

// =============================================================================
// Test Helper Functions
// =============================================================================

// mockDBTX is a mock implementation of query.DBTX interface
type mockDBTX struct{}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockDBTX) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("mockDBTX.QueryRow was called unexpectedly. Use query mock instead.")
}
