//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"condo-booking/internal/infra/seed"
	"condo-booking/internal/infra/uow"
	"condo-booking/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// ApplySeed loads a TOML area configuration the same way the seed command does.
func ApplySeed(t *testing.T, pool *pgxpool.Pool, cfg config.Config, doc string) *seed.Plan {
	t.Helper()

	f, err := seed.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	plan, err := f.Plan()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, seed.Apply(context.Background(), uow.NewPostgresUoW(pool, cfg, logger), plan, logger))
	return plan
}

// CountReservations counts rows for an area and date, optionally filtered by status.
func CountReservations(t *testing.T, db DBLike, areaID uuid.UUID, date time.Time, status string) int {
	t.Helper()

	query := "SELECT count(*) FROM reservations WHERE area_id = $1 AND date = $2"
	args := []any{areaID, date}
	if status != "" {
		query += " AND status = $3"
		args = append(args, status)
	}

	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func CountJobs(t *testing.T, db DBLike, kind string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM notification_jobs WHERE kind = $1", kind).Scan(&n)
	require.NoError(t, err)
	return n
}

// CountJobsByTopic counts notify jobs for one template kind.
func CountJobsByTopic(t *testing.T, db DBLike, topic string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM notification_jobs WHERE kind = 'notify' AND topic = $1", topic).Scan(&n)
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
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
