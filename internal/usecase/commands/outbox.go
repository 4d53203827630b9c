package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"condo-booking/internal/domain/notification"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/pkg/metrics"
	"condo-booking/internal/usecase/shared"
)

var ErrUnknownJobKind = errs.New("unknown outbox job kind")

type DispatchStats struct {
	Delivered int
	Retried   int
	Failed    int
}

func (s DispatchStats) Processed() int {
	return s.Delivered + s.Retried + s.Failed
}

type OutboxCommands interface {
	// DispatchDue works through due jobs one transaction per job, up to the batch size.
	DispatchDue(ctx context.Context) (DispatchStats, error)
}

type outboxCommandsImpl struct {
	uow         shared.UnitOfWork
	calendar    *clock.Calendar
	notifier    notification.Notifier
	waitlist    WaitlistCommands
	batchSize   int
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewOutboxCommands(
	uow shared.UnitOfWork,
	calendar *clock.Calendar,
	notifier notification.Notifier,
	waitlist WaitlistCommands,
	cfg config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) OutboxCommands {
	return &outboxCommandsImpl{
		uow:         uow,
		calendar:    calendar,
		notifier:    notifier,
		waitlist:    waitlist,
		batchSize:   max(cfg.Outbox.BatchSize, 1),
		maxAttempts: max(cfg.Outbox.MaxAttempts, 1),
		metrics:     m,
		logger:      logger,
	}
}

type jobResult string

const (
	resultDelivered jobResult = "delivered"
	resultRetried   jobResult = "retried"
	resultFailed    jobResult = "failed"
)

func (c *outboxCommandsImpl) DispatchDue(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	for stats.Processed() < c.batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		job, result, err := c.dispatchOne(ctx)
		if err != nil {
			return stats, err
		}
		if job == nil {
			break
		}

		c.metrics.ObserveJob(string(job.Kind), string(result))
		switch result {
		case resultDelivered:
			stats.Delivered++
		case resultRetried:
			stats.Retried++
		case resultFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// dispatchOne returns a nil job when nothing is due.
func (c *outboxCommandsImpl) dispatchOne(ctx context.Context) (*notification.Job, jobResult, error) {
	var (
		job      *notification.Job
		result   jobResult
		jobErr   error
		rollback bool
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		job, result, jobErr, rollback = nil, "", nil, false

		due, err := tx.Notifications().ClaimDue(ctx, c.calendar.Now(), 1)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}
		job = &due[0]

		jobErr = c.run(ctx, tx, *job)
		if jobErr == nil {
			result = resultDelivered
			return tx.Notifications().MarkDone(ctx, job.ID)
		}
		if job.Kind == notification.JobSlotFreed {
			// The fan-out wrote rows in this transaction; undo them before rescheduling.
			rollback = true
			return jobErr
		}
		result, err = c.reschedule(ctx, tx, *job, jobErr)
		return err
	})

	if rollback && job != nil {
		err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			var err error
			result, err = c.reschedule(ctx, tx, *job, jobErr)
			return err
		})
	}
	if err != nil {
		return nil, "", err
	}
	return job, result, nil
}

func (c *outboxCommandsImpl) run(ctx context.Context, tx shared.Tx, job notification.Job) error {
	switch job.Kind {
	case notification.JobNotify:
		var payload notification.NotifyPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return errs.Wrap(err, "failed to decode notify payload")
		}
		return c.notifier.Notify(ctx, payload.UserID, payload.Template, payload.Data)
	case notification.JobSlotFreed:
		var payload notification.SlotFreedPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return errs.Wrap(err, "failed to decode slot_freed payload")
		}
		date, slot, err := payload.Parse()
		if err != nil {
			return err
		}
		_, err = c.waitlist.OnFreedWithin(ctx, tx, payload.AreaID, date, slot)
		return err
	default:
		return errs.Wrapf(ErrUnknownJobKind, "kind %q", job.Kind)
	}
}

func (c *outboxCommandsImpl) reschedule(ctx context.Context, tx shared.Tx, job notification.Job, cause error) (jobResult, error) {
	attempts := job.Attempts + 1
	if attempts >= c.maxAttempts || errs.Is(cause, ErrUnknownJobKind) {
		c.logger.Error("outbox job failed permanently",
			"job_id", job.ID,
			"kind", job.Kind,
			"topic", job.Topic,
			"attempts", attempts,
			"error", cause.Error())
		return resultFailed, tx.Notifications().MarkFailed(ctx, job.ID, attempts, cause.Error())
	}

	runAt := c.calendar.Now().Add(notification.Backoff(attempts))
	c.logger.Warn("outbox job will be retried",
		"job_id", job.ID,
		"kind", job.Kind,
		"topic", job.Topic,
		"attempts", attempts,
		"run_at", runAt.Format(time.RFC3339),
		"error", cause.Error())
	return resultRetried, tx.Notifications().MarkRetry(ctx, job.ID, attempts, runAt, cause.Error())
}
