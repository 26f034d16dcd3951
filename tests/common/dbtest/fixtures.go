//go:build unit || e2e

package dbtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"space-booking/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateTestLocation inserts a location row directly, bypassing the API.
func CreateTestLocation(t *testing.T, db DBLike, hostID uuid.UUID, name, timezone string, p pricing.Pricing, instantBooking bool) uuid.UUID {
	t.Helper()

	doc, err := json.Marshal(p)
	require.NoError(t, err)

	id := uuid.New()
	now := time.Now().UTC()
	_, err = db.Exec(context.Background(),
		`INSERT INTO locations (id, host_id, name, timezone, pricing, instant_booking, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		id, hostID, name, timezone, doc, instantBooking, now)
	require.NoError(t, err)
	return id
}

// CountReservations counts reservations of a location, optionally by status.
func CountReservations(t *testing.T, db DBLike, locationID uuid.UUID, statuses ...string) int {
	t.Helper()

	var n int
	var err error
	if len(statuses) == 0 {
		err = db.QueryRow(context.Background(),
			"SELECT count(*) FROM reservations WHERE location_id = $1", locationID).Scan(&n)
	} else {
		err = db.QueryRow(context.Background(),
			"SELECT count(*) FROM reservations WHERE location_id = $1 AND status = ANY($2)", locationID, statuses).Scan(&n)
	}
	require.NoError(t, err)
	return n
}

// ExpirePending moves a pending reservation's deadline into the past.
func ExpirePending(t *testing.T, db DBLike, reservationID uuid.UUID) {
	t.Helper()

	tag, err := db.Exec(context.Background(),
		"UPDATE reservations SET expires_at = now() - interval '1 minute' WHERE id = $1 AND status = 'pending'", reservationID)
	require.NoError(t, err)
	require.Equal(t, int64(1), tag.RowsAffected(), "reservation is not pending")
}

func CountNotifications(t *testing.T, db DBLike, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM notification_jobs WHERE kind = $1", kind).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every table in the public schema.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
