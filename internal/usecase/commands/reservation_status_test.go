//go:build unit

package commands_test

import (
	"testing"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/usecase/shared"
	"condo-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotFreedJobs(jobs []notification.Job) []notification.Job {
	var out []notification.Job
	for _, j := range jobs {
		if j.Kind == notification.JobSlotFreed {
			out = append(out, j)
		}
	}
	return out
}

// =============================================================================
// Cancel
// =============================================================================

func TestCancel_MinimumNotice(t *testing.T) {
	e := newEnv(t)
	areaB := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Policy = area.Policy{MinCancelDays: 2}
	})
	e.seedArea(areaB)

	tooLate := builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.Date = builder.MustDate("2026-03-02")
	})
	inTime := builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.Date = builder.MustDate("2026-03-05")
		b.Protocol = "8K3M9QX2PA"
	})
	lateRes := e.seedReservation(tooLate)
	okRes := e.seedReservation(inTime)

	_, err := e.status().Cancel(e.ctx, lateRes.ID(), tooLate.Resident(), nil)
	requireErrIs(t, err, area.ErrCancellationTooLate)
	assert.Empty(t, slotFreedJobs(e.uow.Jobs()))

	note := "viagem"
	view, err := e.status().Cancel(e.ctx, okRes.ID(), inTime.Resident(), &note)
	require.NoError(t, err)
	assert.Equal(t, "cancelada", view.Status)

	freed := slotFreedJobs(e.uow.Jobs())
	require.Len(t, freed, 1)
	assert.Equal(t, "slot_freed:"+okRes.ID().String(), freed[0].DedupKey)
	assert.Len(t, jobsByTopic(e.uow.Jobs(), string(notification.TemplateReservationCancelled)), 1)

	events := e.uow.Events(okRes.ID())
	require.Len(t, events, 1)
	assert.Equal(t, timeline.ActionCancelled, events[0].Action)
	require.NotNil(t, events[0].Note)
	assert.Equal(t, "viagem", *events[0].Note)
}

func TestCancel_StaffBypass(t *testing.T) {
	areaB := builder.NewAreaBuilder().With(func(b *builder.AreaBuilder) {
		b.Policy = area.Policy{MinCancelDays: 5}
	})
	resB := builder.NewReservationBuilder().ForArea(areaB).With(func(b *builder.ReservationBuilder) {
		b.Date = builder.MustDate("2026-03-02")
	})

	t.Run("success: staff bypasses the window", func(t *testing.T) {
		e := newEnv(t)
		e.seedArea(areaB)
		res := e.seedReservation(resB)

		_, err := e.status().Cancel(e.ctx, res.ID(), newStaff(), nil)
		assert.NoError(t, err)
	})

	t.Run("error: bypass disabled", func(t *testing.T) {
		e := newEnv(t)
		e.cfg.Booking.StaffCancelBypass = false
		e.seedArea(areaB)
		res := e.seedReservation(resB)

		_, err := e.status().Cancel(e.ctx, res.ID(), newStaff(), nil)
		requireErrIs(t, err, area.ErrCancellationTooLate)
	})
}

func TestCancel_IsNotRepeatable(t *testing.T) {
	e := newEnv(t)
	areaB := builder.NewAreaBuilder()
	e.seedArea(areaB)
	resB := builder.NewReservationBuilder().ForArea(areaB)
	res := e.seedReservation(resB)

	_, err := e.status().Cancel(e.ctx, res.ID(), resB.Resident(), nil)
	require.NoError(t, err)

	_, err = e.status().Cancel(e.ctx, res.ID(), resB.Resident(), nil)
	requireErrIs(t, err, reservation.ErrInvalidTransition)
	assert.Len(t, slotFreedJobs(e.uow.Jobs()), 1, "second cancel must not free the slot again")
	assert.Len(t, e.uow.Events(res.ID()), 1)
}

func TestCancel_Access(t *testing.T) {
	e := newEnv(t)
	areaB := builder.NewAreaBuilder()
	e.seedArea(areaB)
	res := e.seedReservation(builder.NewReservationBuilder().ForArea(areaB))

	_, err := e.status().Cancel(e.ctx, res.ID(), newResident(), nil)
	requireErrIs(t, err, shared.ErrForbidden)

	_, err = e.status().Cancel(e.ctx, uuid.New(), newStaff(), nil)
	requireErrIs(t, err, shared.ErrReservationNotFound)
}

// =============================================================================
// Confirm and MarkUsed
// =============================================================================

func TestConfirmAndMarkUsed(t *testing.T) {
	e := newEnv(t)
	areaB := builder.NewAreaBuilder()
	e.seedArea(areaB)
	resB := builder.NewReservationBuilder().ForArea(areaB)
	res := e.seedReservation(resB)
	staff := newStaff()

	_, err := e.status().Confirm(e.ctx, res.ID(), resB.Resident())
	requireErrIs(t, err, shared.ErrForbidden)

	_, err = e.status().MarkUsed(e.ctx, res.ID(), staff)
	requireErrIs(t, err, reservation.ErrInvalidTransition)

	view, err := e.status().Confirm(e.ctx, res.ID(), staff)
	require.NoError(t, err)
	assert.Equal(t, "confirmada", view.Status)
	assert.Len(t, jobsByTopic(e.uow.Jobs(), string(notification.TemplateReservationConfirmed)), 1)

	_, err = e.status().Confirm(e.ctx, res.ID(), staff)
	requireErrIs(t, err, reservation.ErrInvalidTransition)

	view, err = e.status().MarkUsed(e.ctx, res.ID(), staff)
	require.NoError(t, err)
	assert.Equal(t, "utilizada", view.Status)

	_, err = e.status().Cancel(e.ctx, res.ID(), staff, nil)
	requireErrIs(t, err, reservation.ErrInvalidTransition)

	var actions []timeline.Action
	for _, ev := range e.uow.Events(res.ID()) {
		actions = append(actions, ev.Action)
		assert.Equal(t, staff.ID, *ev.ActorID)
	}
	assert.Equal(t, []timeline.Action{timeline.ActionConfirmed, timeline.ActionUsed}, actions)
}
