package repository

import (
	"context"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/infra"
	"condo-booking/internal/infra/db"
	"condo-booking/internal/pkg/pgconv"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(db db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, job notification.Job) (bool, error) {
	var dedup pgtype.Text
	if job.DedupKey != "" {
		dedup = pgtype.Text{String: job.DedupKey, Valid: true}
	}

	query, args, err := psql.Insert("notification_jobs").
		Columns("id", "kind", "topic", "payload", "dedup_key", "status", "attempts", "run_at").
		Values(job.ID, string(job.Kind), job.Topic, job.Payload, dedup, string(notification.JobQueued), 0, job.RunAt).
		Suffix("ON CONFLICT (dedup_key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, infra.WrapRepoErr("failed to build notification insert", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, infra.WrapRepoErr("failed to create notification job", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]notification.Job, error) {
	// #nosec G115 -- batch sizes are small positive config values
	query, args, err := psql.Select("id", "kind", "topic", "payload", "dedup_key", "status", "attempts", "run_at", "last_error").
		From("notification_jobs").
		Where(squirrel.Eq{"status": string(notification.JobQueued)}).
		Where(squirrel.LtOrEq{"run_at": now}).
		OrderBy("run_at", "seq").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build claim query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	jobs := make([]notification.Job, 0, limit)
	for rows.Next() {
		var (
			j                   notification.Job
			kind, status        string
			dedupKey, lastError pgtype.Text
		)
		if err := rows.Scan(&j.ID, &kind, &j.Topic, &j.Payload, &dedupKey, &status, &j.Attempts, &j.RunAt, &lastError); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		j.Kind = notification.JobKind(kind)
		j.Status = notification.JobStatus(status)
		j.DedupKey = dedupKey.String
		j.LastError = pgconv.StringPtrFromPgtype(lastError)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, psql.Update("notification_jobs").
		Set("status", string(notification.JobDone)).
		Set("attempts", squirrel.Expr("attempts + 1")).
		Set("last_error", nil))
}

func (r *NotificationRepository) MarkRetry(ctx context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error {
	return r.update(ctx, id, psql.Update("notification_jobs").
		Set("attempts", attempts).
		Set("run_at", runAt).
		Set("last_error", lastError))
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	return r.update(ctx, id, psql.Update("notification_jobs").
		Set("status", string(notification.JobFailed)).
		Set("attempts", attempts).
		Set("last_error", lastError))
}

func (r *NotificationRepository) update(ctx context.Context, id uuid.UUID, b squirrel.UpdateBuilder) error {
	query, args, err := b.Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build notification update", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to update notification job", err)
	}
	return nil
}
