package converter

import (
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/pkg/errs"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// VoucherColumns matches the field order of VoucherRow.ScanTargets.
// Prices are read as text so no precision is lost on the way to decimal.
const VoucherColumns = `v.id, v.code, v.experience_id, v.owner_user_id, v.purchase_price::text,
	v.status, v.issue_date, v.expiry_date, v.redemption_date, v.linked_booking_id,
	v.notes, v.created_at, v.updated_at`

type VoucherRow struct {
	ID              pgtype.UUID
	Code            string
	ExperienceID    pgtype.UUID
	OwnerUserID     pgtype.UUID
	PurchasePrice   pgtype.Text
	Status          string
	IssueDate       pgtype.Timestamptz
	ExpiryDate      pgtype.Timestamptz
	RedemptionDate  pgtype.Timestamptz
	LinkedBookingID pgtype.UUID
	Notes           pgtype.Text
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

func (r *VoucherRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.Code, &r.ExperienceID, &r.OwnerUserID, &r.PurchasePrice,
		&r.Status, &r.IssueDate, &r.ExpiryDate, &r.RedemptionDate, &r.LinkedBookingID,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt,
	}
}

// ToDomain rejects rows that break the voucher invariants; such rows are
// reported as errs.ErrInvariantViolated rather than silently repaired.
func (r *VoucherRow) ToDomain() (*voucher.Voucher, error) {
	code, err := voucher.NewCode(r.Code)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "voucher %s", uuid.UUID(r.ID.Bytes)), errs.ErrInvariantViolated)
	}
	status, err := voucher.NewStatus(r.Status)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "voucher %s", uuid.UUID(r.ID.Bytes)), errs.ErrInvariantViolated)
	}
	price, err := pgconv.DecimalFromText(r.PurchasePrice)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}

	v, err := voucher.ReconstructVoucher(
		uuid.UUID(r.ID.Bytes),
		code,
		uuid.UUID(r.ExperienceID.Bytes),
		uuid.UUID(r.OwnerUserID.Bytes),
		price,
		status,
		pgconv.TimeFromPgtype(r.IssueDate),
		pgconv.TimeFromPgtype(r.ExpiryDate),
		pgconv.TimePtrFromPgtype(r.RedemptionDate),
		pgconv.UUIDPtrFromPgtype(r.LinkedBookingID),
		pgconv.StringPtrFromPgtype(r.Notes),
		pgconv.TimeFromPgtype(r.CreatedAt),
		pgconv.TimeFromPgtype(r.UpdatedAt),
	)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "voucher %s", uuid.UUID(r.ID.Bytes)), errs.ErrInvariantViolated)
	}
	return v, nil
}

func (r *VoucherRow) ToView() (*queries.VoucherView, error) {
	price, err := pgconv.DecimalFromText(r.PurchasePrice)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolated)
	}
	return &queries.VoucherView{
		ID:              uuid.UUID(r.ID.Bytes),
		Code:            r.Code,
		ExperienceID:    uuid.UUID(r.ExperienceID.Bytes),
		OwnerUserID:     uuid.UUID(r.OwnerUserID.Bytes),
		PurchasePrice:   price,
		Status:          r.Status,
		IssueDate:       pgconv.TimeFromPgtype(r.IssueDate),
		ExpiryDate:      pgconv.TimeFromPgtype(r.ExpiryDate),
		RedemptionDate:  pgconv.TimePtrFromPgtype(r.RedemptionDate),
		LinkedBookingID: pgconv.UUIDPtrFromPgtype(r.LinkedBookingID),
		Notes:           pgconv.StringPtrFromPgtype(r.Notes),
		CreatedAt:       pgconv.TimeFromPgtype(r.CreatedAt),
		UpdatedAt:       pgconv.TimeFromPgtype(r.UpdatedAt),
	}, nil
}
