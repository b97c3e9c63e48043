package converter

import (
	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const BookingColumns = `b.id, b.voucher_id, b.experience_id, b.user_id, b.booking_date,
	b.participants, b.total_price::text, b.special_requests, b.status,
	b.cancellation_date, b.cancellation_reason, b.rescheduled_count,
	b.created_at, b.updated_at`

type BookingRow struct {
	ID                 pgtype.UUID
	VoucherID          pgtype.UUID
	ExperienceID       pgtype.UUID
	UserID             pgtype.UUID
	BookingDate        pgtype.Timestamptz
	Participants       int32
	TotalPrice         pgtype.Text
	SpecialRequests    pgtype.Text
	Status             string
	CancellationDate   pgtype.Timestamptz
	CancellationReason pgtype.Text
	RescheduledCount   int32
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

func (r *BookingRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.VoucherID, &r.ExperienceID, &r.UserID, &r.BookingDate,
		&r.Participants, &r.TotalPrice, &r.SpecialRequests, &r.Status,
		&r.CancellationDate, &r.CancellationReason, &r.RescheduledCount,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *BookingRow) ToDomain() (*booking.Booking, error) {
	status, err := booking.NewStatus(r.Status)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "booking %s", uuid.UUID(r.ID.Bytes)), errs.ErrInvariantViolated)
	}
	price, err := pgconv.DecimalFromText(r.TotalPrice)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}

	b, err := booking.ReconstructBooking(
		uuid.UUID(r.ID.Bytes),
		pgconv.UUIDPtrFromPgtype(r.VoucherID),
		uuid.UUID(r.ExperienceID.Bytes),
		uuid.UUID(r.UserID.Bytes),
		pgconv.TimeFromPgtype(r.BookingDate),
		int(r.Participants),
		price,
		pgconv.StringPtrFromPgtype(r.SpecialRequests),
		status,
		pgconv.TimePtrFromPgtype(r.CancellationDate),
		pgconv.StringPtrFromPgtype(r.CancellationReason),
		int(r.RescheduledCount),
		pgconv.TimeFromPgtype(r.CreatedAt),
		pgconv.TimeFromPgtype(r.UpdatedAt),
	)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "booking %s", uuid.UUID(r.ID.Bytes)), errs.ErrInvariantViolated)
	}
	return b, nil
}

// ToView attaches the voucher code resolved by the read query's join.
func (r *BookingRow) ToView(voucherCode pgtype.Text) (*queries.BookingView, error) {
	price, err := pgconv.DecimalFromText(r.TotalPrice)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}
	return &queries.BookingView{
		ID:                 uuid.UUID(r.ID.Bytes),
		VoucherID:          pgconv.UUIDPtrFromPgtype(r.VoucherID),
		VoucherCode:        pgconv.StringPtrFromPgtype(voucherCode),
		ExperienceID:       uuid.UUID(r.ExperienceID.Bytes),
		UserID:             uuid.UUID(r.UserID.Bytes),
		BookingDate:        pgconv.TimeFromPgtype(r.BookingDate),
		Participants:       int(r.Participants),
		TotalPrice:         price,
		SpecialRequests:    pgconv.StringPtrFromPgtype(r.SpecialRequests),
		Status:             r.Status,
		CancellationDate:   pgconv.TimePtrFromPgtype(r.CancellationDate),
		CancellationReason: pgconv.StringPtrFromPgtype(r.CancellationReason),
		RescheduledCount:   int(r.RescheduledCount),
		CreatedAt:          pgconv.TimeFromPgtype(r.CreatedAt),
		UpdatedAt:          pgconv.TimeFromPgtype(r.UpdatedAt),
	}, nil
}
