package shared

import (
	"context"
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/voucher"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic.
	// Errors marked errs.ErrTransient mean nothing was committed.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes repositories bound to one transaction. Lookups ending in
// ForUpdate hold the row lock until the transaction ends.
type Tx interface {
	Vouchers() VoucherRepository
	Bookings() BookingRepository
	Experiences() ExperienceRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
}

type VoucherRepository interface {
	// Create fails with infra.KindDuplicateKey when the code is taken.
	Create(ctx context.Context, v *voucher.Voucher) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*voucher.Voucher, error)
	Update(ctx context.Context, v *voucher.Voucher) error
	// ExpireLapsed flips active vouchers with expiry_date < now to expired.
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
}

type ExperienceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*experience.Experience, error)
}

// IdempotencyRepository runs inside the operation's transaction, so a key and
// the state change it guards commit together. A concurrent request with the
// same key waits on the key row instead of observing a half-done call.
type IdempotencyRepository interface {
	// TryInsert reports false when the key already exists for this user and endpoint.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	GetForUpdate(ctx context.Context, key, userID uuid.UUID, endpoint string) (*IdempotencyRecord, error)
	ClaimExpired(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	UpdateStatusCompleted(ctx context.Context, key, userID uuid.UUID, endpoint string, result []byte) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationRepository is the transactional outbox. Jobs written with
// CreateJob become visible to the relay only once the enclosing transaction commits.
type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue leases up to limit queued jobs with run_at <= now by moving their
	// run_at to leaseUntil, skipping rows another relay already holds. A job
	// whose outcome is never recorded becomes due again once the lease passes.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]OutboxJob, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	// MarkFailed bumps attempts and reschedules the job at retryAt, or parks it
	// as failed once attempts reaches maxAttempts.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error
}

// WithinResult runs fn in a transaction and hands back its value.
func WithinResult[T any](ctx context.Context, uow UnitOfWork, fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var result T
	err := uow.Within(ctx, func(ctx context.Context, tx Tx) error {
		var ferr error
		result, ferr = fn(ctx, tx)
		return ferr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
