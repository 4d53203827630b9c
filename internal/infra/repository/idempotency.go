package repository

import (
	"context"
	"time"

	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/usecase/shared"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(db db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, actorID uuid.UUID) (*shared.IdempotencyRecord, error) {
	query, args, err := psql.Select("key", "actor_id", "request_hash", "reservation_id", "created_at", "expires_at").
		From("idempotency_keys").
		Where(squirrel.Eq{"key": key, "actor_id": actorID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build idempotency query", err)
	}

	var rec shared.IdempotencyRecord
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&rec.Key, &rec.ActorID, &rec.RequestHash, &rec.ReservationID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

// TryInsert overwrites an existing row only once it has expired.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, rec shared.IdempotencyRecord) (bool, error) {
	const query = `
		INSERT INTO idempotency_keys (key, actor_id, request_hash, reservation_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key, actor_id) DO UPDATE SET
			request_hash = EXCLUDED.request_hash,
			reservation_id = EXCLUDED.reservation_id,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at`

	tag, err := r.db.Exec(ctx, query, rec.Key, rec.ActorID, rec.RequestHash, rec.ReservationID, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
