package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"condo-booking/internal/infra/db"
	"condo-booking/internal/infra/repository"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const backoffBase = 50 * time.Millisecond

type PostgresUoW struct {
	pool       *pgxpool.Pool
	maxRetries int
	logger     *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, cfg config.Config, logger *slog.Logger) shared.UnitOfWork {
	return &PostgresUoW{
		pool:       pool,
		maxRetries: cfg.DB.TxMaxRetries,
		logger:     logger,
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Serializable makes check-then-insert safe; conflicting transactions abort with 40001 and are retried
func (u *PostgresUoW) WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return errs.Mark(err, shared.ErrTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, &pgTx{dbtx: pgxTx}); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, shared.ErrTransactionBegin)
		}

		err = fn(ctx, &pgTx{dbtx: pgxTx})
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, shared.ErrTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shared.ShouldRetry(err, attempt, u.maxRetries) {
			if shared.IsRetryable(err) {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, shared.ErrMaxRetriesExceeded)
			}
			return err
		}

		waitTime := shared.Backoff(attempt, backoffBase)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return shared.ErrMaxRetriesExceeded
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	areaRepo         *repository.AreaRepository
	areaConfigRepo   *repository.AreaConfigRepository
	reservationRepo  *repository.ReservationRepository
	timelineRepo     *repository.TimelineRepository
	interestRepo     *repository.InterestRepository
	notificationRepo *repository.NotificationRepository
	idempotencyRepo  *repository.IdempotencyRepository
}

func (t *pgTx) Areas() shared.AreaRepository {
	if t.areaRepo == nil {
		t.areaRepo = repository.NewAreaRepository(t.dbtx)
	}
	return t.areaRepo
}

func (t *pgTx) AreaConfig() shared.AreaConfigRepository {
	if t.areaConfigRepo == nil {
		t.areaConfigRepo = repository.NewAreaConfigRepository(t.dbtx)
	}
	return t.areaConfigRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Timeline() shared.TimelineRepository {
	if t.timelineRepo == nil {
		t.timelineRepo = repository.NewTimelineRepository(t.dbtx)
	}
	return t.timelineRepo
}

func (t *pgTx) Interests() shared.InterestRepository {
	if t.interestRepo == nil {
		t.interestRepo = repository.NewInterestRepository(t.dbtx)
	}
	return t.interestRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.dbtx)
	}
	return t.notificationRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository(t.dbtx)
	}
	return t.idempotencyRepo
}
