//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateExperience inserts a catalog row; the engine only reads it.
func CreateExperience(t *testing.T, db DBLike, title string, active bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO experiences (id, title, is_active) VALUES ($1, $2, $3)", id, title, active)
	require.NoError(t, err)
	return id
}

// BackdateVoucher moves a voucher's expiry into the past so lapse paths can be exercised.
func BackdateVoucher(t *testing.T, db DBLike, voucherID uuid.UUID, expiry time.Time) {
	t.Helper()

	tag, err := db.Exec(context.Background(),
		"UPDATE vouchers SET issue_date = $2 - interval '12 months', expiry_date = $2 WHERE id = $1",
		voucherID, expiry)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

// MoveBookingDate rewrites a booking date directly, bypassing the window checks.
func MoveBookingDate(t *testing.T, db DBLike, bookingID uuid.UUID, date time.Time) {
	t.Helper()

	tag, err := db.Exec(context.Background(),
		"UPDATE bookings SET booking_date = $2 WHERE id = $1", bookingID, date)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

func CountOutboxJobs(t *testing.T, db DBLike, topic string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM notification_jobs WHERE topic = $1", topic).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except the migration ledger
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
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
