//go:build unit || e2e

// Package memuow is an in-memory shared.UnitOfWork for command tests.
// Transactions run one at a time and roll back on error.
package memuow

import (
	"context"
	"sort"
	"sync"
	"time"

	"condo-booking/internal/domain/area"
	"condo-booking/internal/domain/notification"
	"condo-booking/internal/domain/quota"
	"condo-booking/internal/domain/reservation"
	"condo-booking/internal/domain/schedule"
	"condo-booking/internal/domain/timeline"
	"condo-booking/internal/domain/waitlist"
	"condo-booking/internal/infra"
	"condo-booking/internal/pkg/errs"
	"condo-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type idemKey struct {
	key     uuid.UUID
	actorID uuid.UUID
}

type state struct {
	areas        map[uuid.UUID]area.Area
	slots        map[uuid.UUID][]schedule.TimeSlot
	blocks       map[uuid.UUID][]schedule.BlockPeriod
	global       map[uuid.UUID]quota.WindowLimits
	reservations map[uuid.UUID]reservation.Reservation
	order        []uuid.UUID
	events       []timeline.Event
	interests    []waitlist.Entry
	jobs         []notification.Job
	idempotency  map[idemKey]shared.IdempotencyRecord
}

func newState() *state {
	return &state{
		areas:        map[uuid.UUID]area.Area{},
		slots:        map[uuid.UUID][]schedule.TimeSlot{},
		blocks:       map[uuid.UUID][]schedule.BlockPeriod{},
		global:       map[uuid.UUID]quota.WindowLimits{},
		reservations: map[uuid.UUID]reservation.Reservation{},
		idempotency:  map[idemKey]shared.IdempotencyRecord{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.areas {
		c.areas[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = append([]schedule.TimeSlot(nil), v...)
	}
	for k, v := range s.blocks {
		c.blocks[k] = append([]schedule.BlockPeriod(nil), v...)
	}
	for k, v := range s.global {
		c.global[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	c.order = append([]uuid.UUID(nil), s.order...)
	c.events = append([]timeline.Event(nil), s.events...)
	c.interests = append([]waitlist.Entry(nil), s.interests...)
	c.jobs = append([]notification.Job(nil), s.jobs...)
	return c
}

// UoW implements shared.UnitOfWork over maps guarded by one mutex.
type UoW struct {
	mu         sync.Mutex
	st         *state
	maxRetries int
	conflicts  int
	attempts   int
}

func New(maxRetries int) *UoW {
	return &UoW{st: newState(), maxRetries: maxRetries}
}

// InjectConflicts makes the next n transactions fail at commit with a serialization error.
func (u *UoW) InjectConflicts(n int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.conflicts = n
}

// Attempts counts every transaction body run, retries included.
func (u *UoW) Attempts() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.attempts
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.run(ctx, fn)
}

func (u *UoW) WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.run(ctx, fn)
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	snapshot := u.st.clone()
	defer func() { u.st = snapshot }()
	return fn(ctx, &memTx{st: u.st})
}

func (u *UoW) run(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.attempts++
		snapshot := u.st.clone()

		err := fn(ctx, &memTx{st: u.st})
		if err == nil && u.conflicts > 0 {
			u.conflicts--
			err = &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		if err == nil {
			return nil
		}
		u.st = snapshot

		if !shared.ShouldRetry(err, attempt, u.maxRetries) {
			if shared.IsRetryable(err) {
				return errs.Mark(err, shared.ErrMaxRetriesExceeded)
			}
			return err
		}
	}
	return shared.ErrMaxRetriesExceeded
}

// Seed runs fn in a committed transaction and panics on failure.
func (u *UoW) Seed(fn func(tx shared.Tx) error) {
	if err := u.Within(context.Background(), func(_ context.Context, tx shared.Tx) error { return fn(tx) }); err != nil {
		panic(err)
	}
}

// Inspection helpers for assertions. They read committed state only.

func (u *UoW) Reservations() []*reservation.Reservation {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*reservation.Reservation, 0, len(u.st.order))
	for _, id := range u.st.order {
		r := u.st.reservations[id]
		out = append(out, &r)
	}
	return out
}

func (u *UoW) Events(reservationID uuid.UUID) []timeline.Event {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []timeline.Event
	for _, e := range u.st.events {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out
}

func (u *UoW) Jobs() []notification.Job {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]notification.Job(nil), u.st.jobs...)
}

func (u *UoW) Interests() []*waitlist.Entry {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*waitlist.Entry, 0, len(u.st.interests))
	for i := range u.st.interests {
		e := u.st.interests[i]
		out = append(out, &e)
	}
	return out
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, pgx.ErrNoRows)
}

func duplicate(msg, constraint string) error {
	return infra.WrapRepoErr(msg, &pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

type memTx struct {
	st *state
}

func (t *memTx) Areas() shared.AreaRepository                 { return areaRepo{t.st} }
func (t *memTx) AreaConfig() shared.AreaConfigRepository      { return areaRepo{t.st} }
func (t *memTx) Reservations() shared.ReservationRepository   { return reservationRepo{t.st} }
func (t *memTx) Timeline() shared.TimelineRepository          { return timelineRepo{t.st} }
func (t *memTx) Interests() shared.InterestRepository         { return interestRepo{t.st} }
func (t *memTx) Notifications() shared.NotificationRepository { return notificationRepo{t.st} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return idempotencyRepo{t.st} }

type areaRepo struct{ st *state }

func (r areaRepo) FindByID(_ context.Context, id uuid.UUID) (*area.Area, error) {
	a, ok := r.st.areas[id]
	if !ok {
		return nil, notFound("area not found")
	}
	return &a, nil
}

func (r areaRepo) Slots(_ context.Context, areaID uuid.UUID) ([]schedule.TimeSlot, error) {
	return append([]schedule.TimeSlot(nil), r.st.slots[areaID]...), nil
}

func (r areaRepo) BlocksOn(_ context.Context, areaID uuid.UUID, date time.Time) ([]schedule.BlockPeriod, error) {
	var out []schedule.BlockPeriod
	for _, b := range r.st.blocks[areaID] {
		if b.CoversDate(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r areaRepo) GlobalLimits(_ context.Context, condominiumID uuid.UUID) (quota.WindowLimits, error) {
	return r.st.global[condominiumID], nil
}

func (r areaRepo) UpsertArea(_ context.Context, a *area.Area) error {
	r.st.areas[a.ID()] = *a
	return nil
}

func (r areaRepo) ReplaceSlots(_ context.Context, areaID uuid.UUID, slots []schedule.TimeSlot) error {
	r.st.slots[areaID] = append([]schedule.TimeSlot(nil), slots...)
	return nil
}

func (r areaRepo) ReplaceBlocks(_ context.Context, areaID uuid.UUID, blocks []schedule.BlockPeriod) error {
	r.st.blocks[areaID] = append([]schedule.BlockPeriod(nil), blocks...)
	return nil
}

func (r areaRepo) UpsertGlobalLimits(_ context.Context, condominiumID uuid.UUID, limits quota.WindowLimits) error {
	r.st.global[condominiumID] = limits
	return nil
}

type reservationRepo struct{ st *state }

func (r reservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	for _, existing := range r.st.reservations {
		if existing.Protocol() == res.Protocol() {
			return duplicate("failed to create reservation", infra.ConstraintProtocol)
		}
		if res.Exclusive() && existing.Exclusive() && holdsSlot(existing.Status()) &&
			existing.AreaID() == res.AreaID() && existing.Date().Equal(res.Date()) && existing.Slot() == res.Slot() {
			return duplicate("failed to create reservation", infra.ConstraintExclusiveSlot)
		}
	}
	r.st.reservations[res.ID()] = *res
	r.st.order = append(r.st.order, res.ID())
	return nil
}

// holdsSlot mirrors the partial unique index predicate.
func holdsSlot(s reservation.Status) bool {
	return s == reservation.StatusPending || s == reservation.StatusConfirmed || s == reservation.StatusUsed
}

func (r reservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.st.reservations[id]
	if !ok {
		return nil, notFound("reservation not found")
	}
	return &res, nil
}

func (r reservationRepo) UpdateStatus(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.st.reservations[res.ID()]; !ok {
		return notFound("reservation not found")
	}
	r.st.reservations[res.ID()] = *res
	return nil
}

func (r reservationRepo) CountActive(_ context.Context, f quota.Filter) (int, error) {
	n := 0
	for _, res := range r.st.reservations {
		if !res.Status().IsActive() || !f.Window.Contains(res.Date(), res.Slot()) {
			continue
		}
		if f.AreaID != nil && res.AreaID() != *f.AreaID {
			continue
		}
		if f.CondominiumID != nil && res.CondominiumID() != *f.CondominiumID {
			continue
		}
		if f.UnitID != nil && res.UnitID() != *f.UnitID {
			continue
		}
		if f.ResidentID != nil && res.ResidentID() != *f.ResidentID {
			continue
		}
		n++
	}
	return n, nil
}

func (r reservationRepo) HasActive(_ context.Context, areaID, residentID uuid.UUID) (bool, error) {
	for _, res := range r.st.reservations {
		if res.Status().IsActive() && res.AreaID() == areaID && res.ResidentID() == residentID {
			return true, nil
		}
	}
	return false, nil
}

func (r reservationRepo) ListConfirmedOn(_ context.Context, date time.Time) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, id := range r.st.order {
		res := r.st.reservations[id]
		if res.Status() == reservation.StatusConfirmed && res.Date().Equal(schedule.Date(date)) {
			out = append(out, &res)
		}
	}
	return out, nil
}

type timelineRepo struct{ st *state }

func (r timelineRepo) Append(_ context.Context, e timeline.Event) error {
	r.st.events = append(r.st.events, e)
	return nil
}

func (r timelineRepo) ListByReservation(_ context.Context, reservationID uuid.UUID) ([]timeline.Event, error) {
	var out []timeline.Event
	for _, e := range r.st.events {
		if e.ReservationID == reservationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type interestRepo struct{ st *state }

func sameSlot(e waitlist.Entry, areaID uuid.UUID, date time.Time, slot schedule.Slot) bool {
	return e.AreaID() == areaID && e.Date().Equal(schedule.Date(date)) && e.Slot() == slot
}

func (r interestRepo) Create(_ context.Context, e *waitlist.Entry) error {
	for _, existing := range r.st.interests {
		if existing.ResidentID() == e.ResidentID() && sameSlot(existing, e.AreaID(), e.Date(), e.Slot()) {
			return duplicate("failed to create interest entry", infra.ConstraintInterestUnique)
		}
	}
	r.st.interests = append(r.st.interests, *e)
	return nil
}

func (r interestRepo) FindByID(_ context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	for _, e := range r.st.interests {
		if e.ID() == id {
			return &e, nil
		}
	}
	return nil, notFound("interest entry not found")
}

func (r interestRepo) ListForSlot(_ context.Context, areaID uuid.UUID, date time.Time, slot schedule.Slot) ([]*waitlist.Entry, error) {
	var out []*waitlist.Entry
	for _, e := range r.st.interests {
		if sameSlot(e, areaID, date, slot) {
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out, nil
}

func (r interestRepo) MarkNotified(_ context.Context, e *waitlist.Entry) error {
	for i := range r.st.interests {
		if r.st.interests[i].ID() == e.ID() {
			r.st.interests[i] = *e
			return nil
		}
	}
	return notFound("interest entry not found")
}

func (r interestRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.st.interests {
		if r.st.interests[i].ID() == id {
			r.st.interests = append(r.st.interests[:i:i], r.st.interests[i+1:]...)
			return nil
		}
	}
	return notFound("interest entry not found")
}

func (r interestRepo) DeleteForResident(_ context.Context, areaID, residentID uuid.UUID, date time.Time, slot schedule.Slot) error {
	kept := r.st.interests[:0:0]
	for _, e := range r.st.interests {
		if e.ResidentID() == residentID && sameSlot(e, areaID, date, slot) {
			continue
		}
		kept = append(kept, e)
	}
	r.st.interests = kept
	return nil
}

func (r interestRepo) DeleteBefore(_ context.Context, date time.Time) (int64, error) {
	kept := r.st.interests[:0:0]
	var n int64
	for _, e := range r.st.interests {
		if e.Date().Before(schedule.Date(date)) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.st.interests = kept
	return n, nil
}

type notificationRepo struct{ st *state }

func (r notificationRepo) Enqueue(_ context.Context, job notification.Job) (bool, error) {
	if job.DedupKey != "" {
		for _, existing := range r.st.jobs {
			if existing.DedupKey == job.DedupKey {
				return false, nil
			}
		}
	}
	r.st.jobs = append(r.st.jobs, job)
	return true, nil
}

func (r notificationRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]notification.Job, error) {
	var due []notification.Job
	for _, j := range r.st.jobs {
		if j.Status == notification.JobQueued && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	sort.SliceStable(due, func(i, k int) bool { return due[i].RunAt.Before(due[k].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r notificationRepo) update(id uuid.UUID, fn func(*notification.Job)) error {
	for i := range r.st.jobs {
		if r.st.jobs[i].ID == id {
			fn(&r.st.jobs[i])
			return nil
		}
	}
	return notFound("notification job not found")
}

func (r notificationRepo) MarkDone(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(j *notification.Job) { j.Status = notification.JobDone })
}

func (r notificationRepo) MarkRetry(_ context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error {
	return r.update(id, func(j *notification.Job) {
		j.Attempts = attempts
		j.RunAt = runAt
		j.LastError = &lastError
	})
}

func (r notificationRepo) MarkFailed(_ context.Context, id uuid.UUID, attempts int, lastError string) error {
	return r.update(id, func(j *notification.Job) {
		j.Status = notification.JobFailed
		j.Attempts = attempts
		j.LastError = &lastError
	})
}

type idempotencyRepo struct{ st *state }

func (r idempotencyRepo) Get(_ context.Context, key, actorID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.idempotency[idemKey{key, actorID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func (r idempotencyRepo) TryInsert(_ context.Context, rec shared.IdempotencyRecord) (bool, error) {
	k := idemKey{rec.Key, rec.ActorID}
	if existing, ok := r.st.idempotency[k]; ok && !existing.IsExpired(rec.CreatedAt) {
		return false, nil
	}
	r.st.idempotency[k] = rec
	return true, nil
}

func (r idempotencyRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, rec := range r.st.idempotency {
		if rec.IsExpired(now) {
			delete(r.st.idempotency, k)
			n++
		}
	}
	return n, nil
}
