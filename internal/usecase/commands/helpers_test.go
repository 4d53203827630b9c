//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/pkg/clock"
	"condo-booking/internal/pkg/config"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/pkg/metrics"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/shared"
	"condo-booking/tests/common/builder"
	"condo-booking/tests/common/memuow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-01 09:00 UTC; the condominium calendar is UTC in tests.
var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sequenceProtocols hands out the queued protocols first, then random ones.
type sequenceProtocols struct {
	mu     sync.Mutex
	queue  []reservation.Protocol
	random *reservation.RandomProtocolGenerator
}

func newSequenceProtocols(queue ...reservation.Protocol) *sequenceProtocols {
	return &sequenceProtocols{queue: queue, random: reservation.NewRandomProtocolGenerator()}
}

func (g *sequenceProtocols) Generate() (reservation.Protocol, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) > 0 {
		p := g.queue[0]
		g.queue = g.queue[1:]
		return p, nil
	}
	return g.random.Generate()
}

type env struct {
	ctx       context.Context
	cfg       config.Config
	uow       *memuow.UoW
	clock     *clock.MockClock
	calendar  *clock.Calendar
	protocols *sequenceProtocols
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.NewTestConfig()
	clk := clock.NewMockClock(testNow)
	return &env{
		ctx:       context.Background(),
		cfg:       cfg,
		uow:       memuow.New(cfg.DB.TxMaxRetries),
		clock:     clk,
		calendar:  clock.NewCalendar(clk, time.UTC),
		protocols: newSequenceProtocols(),
		metrics:   metrics.New(),
		logger:    discardLogger(),
	}
}

func (e *env) admission() commands.AdmissionCommands {
	return commands.NewAdmissionCommands(e.uow, e.calendar, e.protocols, e.cfg, e.metrics, e.logger)
}

func (e *env) status() commands.ReservationStatusCommands {
	return commands.NewReservationStatusCommands(e.uow, e.calendar, e.cfg, e.metrics, e.logger)
}

func (e *env) waitlist() commands.WaitlistCommands {
	return commands.NewWaitlistCommands(e.uow, e.calendar, e.logger)
}

func (e *env) seedArea(b *builder.AreaBuilder) *area.Area {
	a := b.MustBuildDomain()
	e.uow.Seed(func(tx shared.Tx) error {
		if err := tx.AreaConfig().UpsertArea(e.ctx, a); err != nil {
			return err
		}
		return tx.AreaConfig().ReplaceSlots(e.ctx, a.ID(), b.BuildTimeSlots())
	})
	return a
}

func (e *env) seedReservation(b *builder.ReservationBuilder) *reservation.Reservation {
	res, err := b.BuildDomain(e.clock.Now())
	if err != nil {
		panic(err)
	}
	e.uow.Seed(func(tx shared.Tx) error { return tx.Reservations().Create(e.ctx, res) })
	return res
}

func newResident() user.Actor {
	unitID := uuid.New()
	return user.NewActor(uuid.New(), user.RoleResident, &unitID)
}

func newStaff() user.Actor {
	return user.NewActor(uuid.New(), user.RoleStaff, nil)
}

func admitInput(a *area.Area, actor user.Actor, date string, slot schedule.Slot) commands.AdmitInput {
	return commands.AdmitInput{
		Actor:         actor,
		AreaID:        a.ID(),
		Date:          builder.MustDate(date),
		Slot:          slot,
		Guests:        2,
		TermsAccepted: true,
	}
}

func requireErrIs(t *testing.T, err, target error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errs.Is(err, target), "expected [%v] but got [%v]", target, err)
}

func jobsByTopic(jobs []notification.Job, topic string) []notification.Job {
	var out []notification.Job
	for _, j := range jobs {
		if j.Topic == topic {
			out = append(out, j)
		}
	}
	return out
}

func assertOutcome(t *testing.T, want string, err error) {
	t.Helper()
	assert.Equal(t, want, commands.Outcome(err))
}
