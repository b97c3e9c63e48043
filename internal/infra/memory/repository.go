package memory

import (
	"context"
	"sort"
	"time"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type voucherRepo struct {
	st *state
}

func (r *voucherRepo) Create(_ context.Context, v *voucher.Voucher) error {
	if _, taken := r.st.codes[v.Code().String()]; taken {
		return infra.WrapRepoErr("voucher code already exists", nil, infra.KindDuplicateKey)
	}
	if _, ok := r.st.experiences[v.ExperienceID()]; !ok {
		return infra.WrapRepoErr("experience does not exist", nil, infra.KindForeignKeyViolated)
	}
	r.st.vouchers[v.ID()] = *v
	r.st.codes[v.Code().String()] = v.ID()
	return nil
}

func (r *voucherRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*voucher.Voucher, error) {
	v, ok := r.st.vouchers[id]
	if !ok {
		return nil, infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
	}
	return &v, nil
}

func (r *voucherRepo) Update(_ context.Context, v *voucher.Voucher) error {
	if _, ok := r.st.vouchers[v.ID()]; !ok {
		return infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
	}
	used := v.Status() == voucher.StatusUsed
	if used != (v.RedemptionDate() != nil) || used != (v.LinkedBookingID() != nil) {
		return infra.WrapRepoErr("vouchers_redemption_check", nil, infra.KindCheckViolated)
	}
	if link := v.LinkedBookingID(); link != nil {
		if _, ok := r.st.bookings[*link]; !ok {
			return infra.WrapRepoErr("linked booking does not exist", nil, infra.KindForeignKeyViolated)
		}
	}
	r.st.vouchers[v.ID()] = *v
	return nil
}

func (r *voucherRepo) ExpireLapsed(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, v := range r.st.vouchers {
		if v.Status() != voucher.StatusActive || !v.IsLapsed(now) {
			continue
		}
		if err := v.Expire(now); err != nil {
			return 0, err
		}
		r.st.vouchers[id] = v
		count++
	}
	return count, nil
}

type bookingRepo struct {
	st *state
}

func (r *bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if _, exists := r.st.bookings[b.ID()]; exists {
		return infra.WrapRepoErr("booking already exists", nil, infra.KindDuplicateKey)
	}
	if vid := b.VoucherID(); vid != nil {
		if _, taken := r.st.byVoucher[*vid]; taken {
			return infra.WrapRepoErr("bookings_voucher_id_key", nil, infra.KindDuplicateKey)
		}
		if _, ok := r.st.vouchers[*vid]; !ok {
			return infra.WrapRepoErr("voucher does not exist", nil, infra.KindForeignKeyViolated)
		}
		r.st.byVoucher[*vid] = b.ID()
	}
	r.st.bookings[b.ID()] = *b
	return nil
}

func (r *bookingRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return &b, nil
}

func (r *bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if _, ok := r.st.bookings[b.ID()]; !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	if b.RescheduledCount() < 0 || b.RescheduledCount() > 1 {
		return infra.WrapRepoErr("bookings_rescheduled_count_check", nil, infra.KindCheckViolated)
	}
	r.st.bookings[b.ID()] = *b
	return nil
}

type experienceRepo struct {
	st *state
}

func (r *experienceRepo) FindByID(_ context.Context, id uuid.UUID) (*experience.Experience, error) {
	e, ok := r.st.experiences[id]
	if !ok {
		return nil, infra.WrapRepoErr("experience not found", nil, infra.KindNotFound)
	}
	return &e, nil
}

type idempotencyRepo struct {
	st *state
}

func (r *idempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	id := idempotencyID{key: key, userID: userID, endpoint: endpoint}
	if _, exists := r.st.idempotency[id]; exists {
		return false, nil
	}
	r.st.idempotency[id] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *idempotencyRepo) GetForUpdate(_ context.Context, key, userID uuid.UUID, endpoint string) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.idempotency[idempotencyID{key: key, userID: userID, endpoint: endpoint}]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (r *idempotencyRepo) ClaimExpired(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	id := idempotencyID{key: key, userID: userID, endpoint: endpoint}
	rec, ok := r.st.idempotency[id]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.RequestHash = requestHash
	rec.Status = shared.IdempotencyStatusProcessing
	rec.Result = nil
	rec.ExpiresAt = expiresAt
	r.st.idempotency[id] = rec
	return nil
}

func (r *idempotencyRepo) UpdateStatusCompleted(_ context.Context, key, userID uuid.UUID, endpoint string, result []byte) error {
	id := idempotencyID{key: key, userID: userID, endpoint: endpoint}
	rec, ok := r.st.idempotency[id]
	if !ok {
		return infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.Result = append([]byte(nil), result...)
	r.st.idempotency[id] = rec
	return nil
}

func (r *idempotencyRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, rec := range r.st.idempotency {
		if rec.ExpiresAt.Before(now) {
			delete(r.st.idempotency, id)
			count++
		}
	}
	return count, nil
}

type notificationRepo struct {
	st *state
}

func (r *notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	id := uuid.New()
	r.st.jobs[id] = outboxEntry{job: shared.OutboxJob{
		ID:      id,
		Kind:    kind,
		Topic:   topic,
		Payload: append([]byte(nil), payload...),
		RunAt:   runAt,
		Status:  shared.JobStatusQueued,
	}}
	r.st.jobOrder = append(r.st.jobOrder, id)
	return nil
}

func (r *notificationRepo) ClaimDue(_ context.Context, now, leaseUntil time.Time, limit int) ([]shared.OutboxJob, error) {
	var due []shared.OutboxJob
	for _, id := range r.st.jobOrder {
		job := r.st.jobs[id].job
		if job.Status == shared.JobStatusQueued && !job.RunAt.After(now) {
			due = append(due, job)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		entry := r.st.jobs[due[i].ID]
		entry.job.RunAt = leaseUntil
		r.st.jobs[due[i].ID] = entry
		due[i].RunAt = leaseUntil
	}
	return due, nil
}

func (r *notificationRepo) MarkSent(_ context.Context, id uuid.UUID) error {
	entry, ok := r.st.jobs[id]
	if !ok {
		return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
	}
	if entry.job.Status != shared.JobStatusQueued {
		return nil
	}
	entry.job.Attempts++
	entry.job.Status = shared.JobStatusSent
	entry.lastError = ""
	r.st.jobs[id] = entry
	return nil
}

func (r *notificationRepo) MarkFailed(_ context.Context, id uuid.UUID, lastError string, retryAt time.Time, maxAttempts int) error {
	entry, ok := r.st.jobs[id]
	if !ok {
		return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
	}
	if entry.job.Status != shared.JobStatusQueued {
		return nil
	}
	entry.job.Attempts++
	entry.job.RunAt = retryAt
	entry.lastError = lastError
	if entry.job.Attempts >= maxAttempts {
		entry.job.Status = shared.JobStatusFailed
	}
	r.st.jobs[id] = entry
	return nil
}
