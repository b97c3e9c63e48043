package repository

import (
	"context"

	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/infra/repository/converter"
	"voucher-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertBookingSQL = `
INSERT INTO bookings (
    id, voucher_id, experience_id, user_id, booking_date, participants,
    total_price, special_requests, status, cancellation_date,
    cancellation_reason, rescheduled_count, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14)`

	selectBookingForUpdateSQL = `
SELECT ` + converter.BookingColumns + `
FROM bookings b
WHERE b.id = $1
FOR UPDATE`

	updateBookingSQL = `
UPDATE bookings
SET booking_date = $2,
    status = $3,
    cancellation_date = $4,
    cancellation_reason = $5,
    rescheduled_count = $6,
    updated_at = $7
WHERE id = $1`
)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	_, err := r.db.Exec(ctx, insertBookingSQL,
		pgconv.UUIDToPgtype(b.ID()),
		pgconv.UUIDPtrToPgtype(b.VoucherID()),
		pgconv.UUIDToPgtype(b.ExperienceID()),
		pgconv.UUIDToPgtype(b.UserID()),
		pgconv.TimeToPgtype(b.BookingDate()),
		int32(b.Participants()), // #nosec G115 -- participants is validated to a small positive count
		b.TotalPrice().String(),
		pgconv.StringPtrToPgtype(b.SpecialRequests()),
		b.Status().String(),
		pgconv.TimePtrToPgtype(b.CancellationDate()),
		pgconv.StringPtrToPgtype(b.CancellationReason()),
		int32(b.RescheduledCount()), // #nosec G115
		pgconv.TimeToPgtype(b.CreatedAt()),
		pgconv.TimeToPgtype(b.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var row converter.BookingRow
	err := r.db.QueryRow(ctx, selectBookingForUpdateSQL, pgconv.UUIDToPgtype(id)).Scan(row.ScanTargets()...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock booking", err)
	}
	return row.ToDomain()
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	tag, err := r.db.Exec(ctx, updateBookingSQL,
		pgconv.UUIDToPgtype(b.ID()),
		pgconv.TimeToPgtype(b.BookingDate()),
		b.Status().String(),
		pgconv.TimePtrToPgtype(b.CancellationDate()),
		pgconv.StringPtrToPgtype(b.CancellationReason()),
		int32(b.RescheduledCount()), // #nosec G115
		pgconv.TimeToPgtype(b.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}
