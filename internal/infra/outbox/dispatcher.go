package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"condo-booking/internal/pkg/config"
	"condo-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

// Dispatcher drains the notification outbox on a fixed interval and purges
// expired waitlist entries and idempotency keys on the same tick.
type Dispatcher struct {
	outbox    commands.OutboxCommands
	waitlist  commands.WaitlistCommands
	admission commands.AdmissionCommands
	interval  time.Duration
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(
	outbox commands.OutboxCommands,
	waitlist commands.WaitlistCommands,
	admission commands.AdmissionCommands,
	cfg config.Config,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		waitlist:  waitlist,
		admission: admission,
		interval:  cfg.Outbox.Interval,
		logger:    logger,
	}
}

func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.loop(ctx)
	}()
	d.logger.Info("outbox dispatcher started", "interval", d.interval.String())
}

func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Info("outbox dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs one pass. Errors are logged; the next tick tries again.
func (d *Dispatcher) Tick(ctx context.Context) {
	stats, err := d.outbox.DispatchDue(ctx)
	if err != nil && ctx.Err() == nil {
		d.logger.Error("outbox dispatch failed", "error", err.Error())
	}
	if stats.Processed() > 0 {
		d.logger.Info("outbox dispatched",
			"delivered", stats.Delivered,
			"retried", stats.Retried,
			"failed", stats.Failed)
	}

	if _, err := d.waitlist.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("waitlist purge failed", "error", err.Error())
	}
	if n, err := d.admission.PurgeExpiredKeys(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error("idempotency key purge failed", "error", err.Error())
	} else if n > 0 {
		d.logger.Debug("idempotency keys purged", "count", n)
	}
}

// Register hooks the dispatcher into the fx lifecycle unless the outbox is disabled.
func Register(lc fx.Lifecycle, d *Dispatcher, cfg config.Config) {
	if !cfg.Outbox.Enabled {
		d.logger.Info("outbox dispatcher disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.Start()
			return nil
		},
		OnStop: d.Stop,
	})
}
