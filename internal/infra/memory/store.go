// Package memory is a single-process store behind the same transactional
// interfaces as the Postgres one. One mutex serializes every transaction.
package memory

import (
	"context"
	"sync"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type idempotencyID struct {
	key      uuid.UUID
	userID   uuid.UUID
	endpoint string
}

type outboxEntry struct {
	job       shared.OutboxJob
	lastError string
}

type state struct {
	experiences map[uuid.UUID]experience.Experience
	vouchers    map[uuid.UUID]voucher.Voucher
	codes       map[string]uuid.UUID
	bookings    map[uuid.UUID]booking.Booking
	byVoucher   map[uuid.UUID]uuid.UUID
	idempotency map[idempotencyID]shared.IdempotencyRecord
	jobs        map[uuid.UUID]outboxEntry
	jobOrder    []uuid.UUID
}

func newState() *state {
	return &state{
		experiences: map[uuid.UUID]experience.Experience{},
		vouchers:    map[uuid.UUID]voucher.Voucher{},
		codes:       map[string]uuid.UUID{},
		bookings:    map[uuid.UUID]booking.Booking{},
		byVoucher:   map[uuid.UUID]uuid.UUID{},
		idempotency: map[idempotencyID]shared.IdempotencyRecord{},
		jobs:        map[uuid.UUID]outboxEntry{},
	}
}

// clone copies the maps so a failed transaction leaves nothing behind.
// Entities are stored by value and never mutated in place.
func (s *state) clone() *state {
	c := &state{
		experiences: make(map[uuid.UUID]experience.Experience, len(s.experiences)),
		vouchers:    make(map[uuid.UUID]voucher.Voucher, len(s.vouchers)),
		codes:       make(map[string]uuid.UUID, len(s.codes)),
		bookings:    make(map[uuid.UUID]booking.Booking, len(s.bookings)),
		byVoucher:   make(map[uuid.UUID]uuid.UUID, len(s.byVoucher)),
		idempotency: make(map[idempotencyID]shared.IdempotencyRecord, len(s.idempotency)),
		jobs:        make(map[uuid.UUID]outboxEntry, len(s.jobs)),
		jobOrder:    append([]uuid.UUID(nil), s.jobOrder...),
	}
	for k, v := range s.experiences {
		c.experiences[k] = v
	}
	for k, v := range s.vouchers {
		c.vouchers[k] = v
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.byVoucher {
		c.byVoucher[k] = v
	}
	for k, v := range s.idempotency {
		c.idempotency[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// Within runs fn against a private copy of the state and publishes the copy
// only when fn succeeds.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return errs.Mark(err, errs.ErrTransient)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &memTx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errs.Mark(err, errs.ErrTransient)
	}
	s.state = work
	return nil
}

// PutExperience registers a catalog entry. The catalog is owned elsewhere,
// so this is how local runs and tests make experiences visible.
func (s *Store) PutExperience(exp *experience.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.experiences[exp.ID()] = *exp
}

// OutboxJobs returns a snapshot of every job in insertion order.
func (s *Store) OutboxJobs() []shared.OutboxJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]shared.OutboxJob, 0, len(s.state.jobOrder))
	for _, id := range s.state.jobOrder {
		jobs = append(jobs, s.state.jobs[id].job)
	}
	return jobs
}

type memTx struct {
	st *state
}

func (t *memTx) Vouchers() shared.VoucherRepository           { return &voucherRepo{st: t.st} }
func (t *memTx) Bookings() shared.BookingRepository           { return &bookingRepo{st: t.st} }
func (t *memTx) Experiences() shared.ExperienceRepository     { return &experienceRepo{st: t.st} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return &idempotencyRepo{st: t.st} }
func (t *memTx) Notifications() shared.NotificationRepository { return &notificationRepo{st: t.st} }
