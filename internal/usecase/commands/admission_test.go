//go:build unit

package commands_test

import (
	"sync"
	"testing"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/domain/user"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/commands"
	"condo-booking/internal/usecase/shared"
	"condo-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type AdmissionSuite struct {
	suite.Suite
	env   *env
	cmds  commands.AdmissionCommands
	slot  schedule.Slot
	areaB *builder.AreaBuilder
}

func TestAdmissionSuite(t *testing.T) {
	suite.Run(t, new(AdmissionSuite))
}

func (s *AdmissionSuite) SetupTest() {
	s.env = newEnv(s.T())
	s.cmds = s.env.admission()
	s.slot = builder.MustSlot("10:00", "12:00")
	s.areaB = builder.NewAreaBuilder()
}

func (s *AdmissionSuite) admit(in commands.AdmitInput) (*commands.AdmitResult, error) {
	return s.cmds.Admit(s.env.ctx, in, nil)
}

// =============================================================================
// Scenarios
// =============================================================================

func (s *AdmissionSuite) TestExclusiveSlotAdmitsOnlyFirst() {
	a := s.env.seedArea(s.areaB)

	first, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	s.Require().NoError(err)
	s.Equal("pendente", first.Reservation.Status)
	s.Len(first.Reservation.Protocol, reservation.ProtocolLength)

	_, err = s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)
	s.Len(s.env.uow.Reservations(), 1)
}

func (s *AdmissionSuite) TestResidentDailyQuota() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) {
		b.Flags.AllowMultiple = true
		b.Limits.Resident.Day = 1
		b.Slots = []schedule.Slot{builder.MustSlot("10:00", "12:00"), builder.MustSlot("14:00", "16:00")}
	}))
	resident := newResident()

	_, err := s.admit(admitInput(a, resident, "2026-03-10", builder.MustSlot("10:00", "12:00")))
	s.Require().NoError(err)

	_, err = s.admit(admitInput(a, resident, "2026-03-10", builder.MustSlot("14:00", "16:00")))
	var exceeded *quota.ExceededError
	s.Require().True(errs.As(err, &exceeded), "got %v", err)
	s.Equal(quota.DimensionDay, exceeded.Dimension)
	s.Equal(quota.ScopeResident, exceeded.Scope)
	s.Equal(1, exceeded.Limit)
	s.Equal(1, exceeded.Current)
	assertOutcome(s.T(), "QUOTA_EXCEEDED", err)

	// Another resident of a different unit is unaffected.
	_, err = s.admit(admitInput(a, newResident(), "2026-03-10", builder.MustSlot("14:00", "16:00")))
	s.NoError(err)
}

func (s *AdmissionSuite) TestConcurrentRequestsForOneExclusiveSlot() {
	a := s.env.seedArea(s.areaB)

	const requests = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		rejected  int
		unexpects []error
	)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errs.Is(err, reservation.ErrSlotUnavailable):
				rejected++
			default:
				unexpects = append(unexpects, err)
			}
		}()
	}
	wg.Wait()

	s.Empty(unexpects)
	s.Equal(1, admitted)
	s.Equal(requests-1, rejected)
	s.Len(s.env.uow.Reservations(), 1)
}

// =============================================================================
// Rule order and individual rules
// =============================================================================

func (s *AdmissionSuite) TestRules() {
	slot := builder.MustSlot("10:00", "12:00")

	testCases := []struct {
		name    string
		area    func(*builder.AreaBuilder)
		input   func(*commands.AdmitInput)
		outcome string
	}{
		{
			name:    "error: unknown area",
			input:   func(in *commands.AdmitInput) { in.AreaID = uuid.New() },
			outcome: "AREA_NOT_FOUND",
		},
		{
			name:    "error: inactive area",
			area:    func(b *builder.AreaBuilder) { b.Active = false },
			outcome: "SLOT_UNAVAILABLE",
		},
		{
			name:    "error: slot not offered",
			input:   func(in *commands.AdmitInput) { in.Slot = builder.MustSlot("13:00", "15:00") },
			outcome: "SLOT_UNAVAILABLE",
		},
		{
			name:    "error: slot not offered on that weekday",
			area:    func(b *builder.AreaBuilder) { b.Weekdays = schedule.NewWeekdaySet(0) },
			outcome: "SLOT_UNAVAILABLE",
		},
		{
			name:    "error: past date",
			input:   func(in *commands.AdmitInput) { in.Date = builder.MustDate("2026-02-28") },
			outcome: "OUTSIDE_BOOKING_WINDOW",
		},
		{
			name: "error: terms required",
			area: func(b *builder.AreaBuilder) { b.Flags.RequiresTerms = true },
			input: func(in *commands.AdmitInput) {
				in.TermsAccepted = false
			},
			outcome: "TERMS_NOT_ACCEPTED",
		},
		{
			name:    "error: guests above capacity",
			area:    func(b *builder.AreaBuilder) { b.Capacity = 10 },
			input:   func(in *commands.AdmitInput) { in.Guests = 11 },
			outcome: "CAPACITY_EXCEEDED",
		},
		{
			name: "error: window is checked before terms",
			area: func(b *builder.AreaBuilder) {
				b.Flags.RequiresTerms = true
				b.Policy.MinAdvanceDays = 30
			},
			input:   func(in *commands.AdmitInput) { in.TermsAccepted = false },
			outcome: "OUTSIDE_BOOKING_WINDOW",
		},
		{
			name:    "error: zero guests",
			input:   func(in *commands.AdmitInput) { in.Guests = 0 },
			outcome: "INVALID_REQUEST",
		},
		{
			name:    "success: terms not required",
			input:   func(in *commands.AdmitInput) { in.TermsAccepted = false },
			outcome: "OK",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			b := builder.NewAreaBuilder()
			if tc.area != nil {
				b.With(tc.area)
			}
			a := s.env.seedArea(b)
			in := admitInput(a, newResident(), "2026-03-10", slot)
			if tc.input != nil {
				tc.input(&in)
			}

			_, err := s.admit(in)
			assertOutcome(s.T(), tc.outcome, err)
		})
	}
}

func (s *AdmissionSuite) TestBookingWindowBoundaries() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) {
		b.Flags.AllowMultiple = true
		b.Policy = area.Policy{MinAdvanceDays: 1, MaxAdvanceDays: 30}
	}))

	for date, want := range map[string]string{
		"2026-03-01": "OUTSIDE_BOOKING_WINDOW",
		"2026-03-02": "OK",
		"2026-03-31": "OK",
		"2026-04-01": "OUTSIDE_BOOKING_WINDOW",
	} {
		_, err := s.admit(admitInput(a, newResident(), date, s.slot))
		assertOutcome(s.T(), want, err)
	}
}

func (s *AdmissionSuite) TestSlotCapacityOnSharedArea() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) {
		b.Flags.AllowMultiple = true
		b.Limits.Area.Slot = 2
	}))

	for range 2 {
		_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
		s.Require().NoError(err)
	}
	_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)
}

func (s *AdmissionSuite) TestCancelledReservationFreesSlotAndQuota() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) {
		b.Limits.Unit.Month = 1
	}))
	resident := newResident()

	first, err := s.admit(admitInput(a, resident, "2026-03-10", s.slot))
	s.Require().NoError(err)
	_, err = s.env.status().Cancel(s.env.ctx, first.Reservation.ID, resident, nil)
	s.Require().NoError(err)

	_, err = s.admit(admitInput(a, resident, "2026-03-10", s.slot))
	s.NoError(err)
}

func (s *AdmissionSuite) TestGlobalLimitCountsUnitAcrossAreas() {
	pool := s.env.seedArea(s.areaB)
	gym := s.env.seedArea(builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.CondominiumID = pool.CondominiumID()
		b.Name = "Academia"
	}))
	s.env.uow.Seed(func(tx shared.Tx) error {
		return tx.AreaConfig().UpsertGlobalLimits(s.env.ctx, pool.CondominiumID(), quota.WindowLimits{Week: 1})
	})
	resident := newResident()

	_, err := s.admit(admitInput(pool, resident, "2026-03-10", s.slot))
	s.Require().NoError(err)

	// Same unit, another resident, same ISO week, another area.
	housemate := user.NewActor(uuid.New(), user.RoleResident, resident.UnitID)
	_, err = s.admit(admitInput(gym, housemate, "2026-03-12", s.slot))
	var exceeded *quota.ExceededError
	s.Require().True(errs.As(err, &exceeded), "got %v", err)
	s.Equal(quota.ScopeGlobal, exceeded.Scope)
	s.Equal(quota.DimensionWeek, exceeded.Dimension)

	// The following week is a new window.
	_, err = s.admit(admitInput(gym, housemate, "2026-03-16", s.slot))
	s.NoError(err)
}

func (s *AdmissionSuite) TestLockAfterBooking() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) {
		b.Flags.LockAfterBooking = true
		b.Slots = []schedule.Slot{builder.MustSlot("10:00", "12:00"), builder.MustSlot("14:00", "16:00")}
	}))
	resident := newResident()

	_, err := s.admit(admitInput(a, resident, "2026-03-10", s.slot))
	s.Require().NoError(err)

	_, err = s.admit(admitInput(a, resident, "2026-03-20", builder.MustSlot("14:00", "16:00")))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)
}

func (s *AdmissionSuite) TestLockAfterBooking_PastActiveReservations() {
	areaB := s.areaB.With(func(b *builder.AreaBuilder) {
		b.Flags.LockAfterBooking = true
		b.Flags.AllowMultiple = true
	})
	a := s.env.seedArea(areaB)

	used := newResident()
	res, err := builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.ResidentID, b.UnitID = used.ID, *used.UnitID
		b.Date = builder.MustDate("2026-02-20")
		b.AutoConfirm = true
	}).BuildDomain(testNow)
	s.Require().NoError(err)
	s.Require().NoError(res.MarkUsed(testNow))
	s.env.uow.Seed(func(tx shared.Tx) error { return tx.Reservations().Create(s.env.ctx, res) })

	_, err = s.admit(admitInput(a, used, "2026-03-10", s.slot))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)

	pending := newResident()
	s.env.seedReservation(builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.ResidentID, b.UnitID = pending.ID, *pending.UnitID
		b.Date = builder.MustDate("2026-02-25")
	}))

	_, err = s.admit(admitInput(a, pending, "2026-03-10", s.slot))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)

	cancelled := newResident()
	gone, err := builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.ResidentID, b.UnitID = cancelled.ID, *cancelled.UnitID
		b.Date = builder.MustDate("2026-03-05")
	}).BuildDomain(testNow)
	s.Require().NoError(err)
	s.Require().NoError(gone.Cancel(testNow))
	s.env.uow.Seed(func(tx shared.Tx) error { return tx.Reservations().Create(s.env.ctx, gone) })

	_, err = s.admit(admitInput(a, cancelled, "2026-03-10", s.slot))
	s.NoError(err)
}

// =============================================================================
// Ownership
// =============================================================================

func (s *AdmissionSuite) TestOwnership() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) { b.Flags.AllowMultiple = true }))
	staff := newStaff()
	residentID, unitID := uuid.New(), uuid.New()

	s.Run("success: staff books on behalf of a resident", func() {
		in := admitInput(a, staff, "2026-03-10", s.slot)
		in.ResidentID, in.UnitID = &residentID, &unitID
		result, err := s.admit(in)
		s.Require().NoError(err)
		s.Equal(residentID, result.Reservation.ResidentID)
		s.Equal(unitID, result.Reservation.UnitID)
	})

	s.Run("error: staff without a target resident", func() {
		_, err := s.admit(admitInput(a, staff, "2026-03-10", s.slot))
		requireErrIs(s.T(), err, commands.ErrInvalidRequest)
	})

	s.Run("error: resident booking for someone else", func() {
		in := admitInput(a, newResident(), "2026-03-10", s.slot)
		in.ResidentID = &residentID
		_, err := s.admit(in)
		requireErrIs(s.T(), err, shared.ErrForbidden)
	})

	s.Run("error: resident without a unit", func() {
		_, err := s.admit(admitInput(a, user.NewActor(uuid.New(), user.RoleResident, nil), "2026-03-10", s.slot))
		requireErrIs(s.T(), err, shared.ErrForbidden)
	})
}

// =============================================================================
// Side effects
// =============================================================================

func (s *AdmissionSuite) TestAutoConfirmWritesTimelineAndJobs() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) { b.Flags.AutoConfirm = true }))

	result, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	s.Require().NoError(err)
	s.Equal("confirmada", result.Reservation.Status)
	s.Equal(a.Name(), result.Reservation.AreaName)

	events := s.env.uow.Events(result.Reservation.ID)
	s.Require().Len(events, 2)
	s.Equal(timeline.ActionCreated, events[0].Action)
	s.Equal(timeline.ActionConfirmed, events[1].Action)

	jobs := s.env.uow.Jobs()
	s.Len(jobsByTopic(jobs, string(notification.TemplateReservationCreated)), 1)
	s.Len(jobsByTopic(jobs, string(notification.TemplateReservationConfirmed)), 1)
}

func (s *AdmissionSuite) TestAdmissionRemovesOwnInterest() {
	a := s.env.seedArea(s.areaB)
	resident := newResident()
	other := newResident()

	for _, actor := range []user.Actor{resident, other} {
		_, err := s.env.waitlist().RegisterInterest(s.env.ctx, commands.RegisterInterestInput{
			Actor: actor, AreaID: a.ID(), Date: builder.MustDate("2026-03-10"), Slot: s.slot,
		})
		s.Require().NoError(err)
	}

	_, err := s.admit(admitInput(a, resident, "2026-03-10", s.slot))
	s.Require().NoError(err)

	remaining := s.env.uow.Interests()
	s.Require().Len(remaining, 1)
	s.Equal(other.ID, remaining[0].ResidentID())
}

func (s *AdmissionSuite) TestRejectedAdmissionLeavesNoState() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) { b.Flags.RequiresTerms = true }))
	in := admitInput(a, newResident(), "2026-03-10", s.slot)
	in.TermsAccepted = false

	_, err := s.admit(in)
	s.Require().Error(err)
	s.Empty(s.env.uow.Reservations())
	s.Empty(s.env.uow.Jobs())
}

func (s *AdmissionSuite) TestOutcomeMetrics() {
	a := s.env.seedArea(s.areaB)
	_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	s.Require().NoError(err)
	_, _ = s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))

	count, err := testutil.GatherAndCount(s.env.metrics.Registry(), "condo_booking_admissions_total")
	s.Require().NoError(err)
	s.Equal(2, count, "one series per outcome")
}

// =============================================================================
// Idempotency, retries and protocol collisions
// =============================================================================

func (s *AdmissionSuite) TestIdempotentReplay() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) { b.Flags.AllowMultiple = true }))
	resident := newResident()
	key := uuid.New()
	in := admitInput(a, resident, "2026-03-10", s.slot)

	first, err := s.cmds.Admit(s.env.ctx, in, &key)
	s.Require().NoError(err)
	s.False(first.IsReplayed)

	again, err := s.cmds.Admit(s.env.ctx, in, &key)
	s.Require().NoError(err)
	s.True(again.IsReplayed)
	s.Equal(first.Reservation.ID, again.Reservation.ID)
	s.Equal(first.Reservation.Protocol, again.Reservation.Protocol)
	s.Len(s.env.uow.Reservations(), 1)

	changed := in
	changed.Guests = 5
	_, err = s.cmds.Admit(s.env.ctx, changed, &key)
	requireErrIs(s.T(), err, commands.ErrIdempotencyKeyReused)

	// The key is scoped to the actor.
	_, err = s.cmds.Admit(s.env.ctx, admitInput(a, newResident(), "2026-03-10", s.slot), &key)
	s.NoError(err)
}

func (s *AdmissionSuite) TestIdempotencyKeyExpires() {
	a := s.env.seedArea(s.areaB.With(func(b *builder.AreaBuilder) { b.Flags.AllowMultiple = true }))
	key := uuid.New()
	in := admitInput(a, newResident(), "2026-03-10", s.slot)

	_, err := s.cmds.Admit(s.env.ctx, in, &key)
	s.Require().NoError(err)

	s.env.clock.Add(s.env.cfg.Booking.IdempotencyTTL)
	purged, err := s.cmds.PurgeExpiredKeys(s.env.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), purged)

	again, err := s.cmds.Admit(s.env.ctx, in, &key)
	s.Require().NoError(err)
	s.False(again.IsReplayed)
	s.Len(s.env.uow.Reservations(), 2)
}

func (s *AdmissionSuite) TestSerializationConflictIsRetried() {
	a := s.env.seedArea(s.areaB)
	s.env.uow.InjectConflicts(1)
	before := s.env.uow.Attempts()

	_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	s.Require().NoError(err)
	s.Equal(2, s.env.uow.Attempts()-before)
	s.Len(s.env.uow.Reservations(), 1)
	s.Len(s.env.uow.Jobs(), 1, "rolled back attempt leaves no job behind")
}

func (s *AdmissionSuite) TestRetryExhaustionIsSlotUnavailable() {
	a := s.env.seedArea(s.areaB)
	s.env.uow.InjectConflicts(100)

	_, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	requireErrIs(s.T(), err, reservation.ErrSlotUnavailable)
	requireErrIs(s.T(), err, shared.ErrMaxRetriesExceeded)
	s.Empty(s.env.uow.Reservations())
}

func (s *AdmissionSuite) TestProtocolCollisionRegenerates() {
	a := s.env.seedArea(s.areaB)
	taken := s.env.seedReservation(builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.Protocol = "AAAAAAAAAA"
	}))
	s.env.protocols.queue = []reservation.Protocol{taken.Protocol(), "BBBBBBBBBB"}

	result, err := s.admit(admitInput(a, newResident(), "2026-03-10", s.slot))
	s.Require().NoError(err)
	s.Equal("BBBBBBBBBB", result.Reservation.Protocol)
}
