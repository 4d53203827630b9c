//go:build unit

package shared_test

import (
	"fmt"
	"testing"
	"time"

	"condo-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, shared.IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, shared.IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, shared.IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, shared.IsRetryable(assert.AnError))

	assert.False(t, shared.ShouldRetry(&pgconn.PgError{Code: "40001"}, 3, 3))
	assert.True(t, shared.ShouldRetry(&pgconn.PgError{Code: "40001"}, 2, 3))
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := range 4 {
		want := time.Duration(1<<attempt) * base
		got := shared.Backoff(attempt, base)
		assert.GreaterOrEqual(t, got, want)
		assert.Less(t, got, want+want/5+time.Nanosecond)
	}
}

func TestIdempotencyRecordIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := shared.IdempotencyRecord{ExpiresAt: now}
	assert.True(t, rec.IsExpired(now))
	assert.False(t, rec.IsExpired(now.Add(-time.Second)))
}
