package repository

import (
	"context"
	"time"

	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/infra/repository/converter"
	"voucher-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertVoucherSQL = `
INSERT INTO vouchers (
    id, code, experience_id, owner_user_id, purchase_price, status,
    issue_date, expiry_date, redemption_date, linked_booking_id, notes,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectVoucherForUpdateSQL = `
SELECT ` + converter.VoucherColumns + `
FROM vouchers v
WHERE v.id = $1
FOR UPDATE`

	updateVoucherSQL = `
UPDATE vouchers
SET status = $2,
    redemption_date = $3,
    linked_booking_id = $4,
    notes = $5,
    updated_at = $6
WHERE id = $1`

	expireLapsedVouchersSQL = `
UPDATE vouchers
SET status = 'expired',
    updated_at = $1
WHERE status = 'active'
  AND expiry_date < $1`
)

type VoucherRepository struct {
	db db.DBTX
}

func NewVoucherRepository(dbtx db.DBTX) *VoucherRepository {
	return &VoucherRepository{db: dbtx}
}

func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) error {
	_, err := r.db.Exec(ctx, insertVoucherSQL,
		pgconv.UUIDToPgtype(v.ID()),
		v.Code().String(),
		pgconv.UUIDToPgtype(v.ExperienceID()),
		pgconv.UUIDToPgtype(v.OwnerUserID()),
		v.PurchasePrice().String(),
		v.Status().String(),
		pgconv.TimeToPgtype(v.IssueDate()),
		pgconv.TimeToPgtype(v.ExpiryDate()),
		pgconv.TimePtrToPgtype(v.RedemptionDate()),
		pgconv.UUIDPtrToPgtype(v.LinkedBookingID()),
		pgconv.StringPtrToPgtype(v.Notes()),
		pgconv.TimeToPgtype(v.CreatedAt()),
		pgconv.TimeToPgtype(v.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create voucher", err)
	}
	return nil
}

func (r *VoucherRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*voucher.Voucher, error) {
	var row converter.VoucherRow
	err := r.db.QueryRow(ctx, selectVoucherForUpdateSQL, pgconv.UUIDToPgtype(id)).Scan(row.ScanTargets()...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock voucher", err)
	}
	return row.ToDomain()
}

// Update persists the mutable lifecycle fields. Code, price and dates are
// fixed at issue time.
func (r *VoucherRepository) Update(ctx context.Context, v *voucher.Voucher) error {
	tag, err := r.db.Exec(ctx, updateVoucherSQL,
		pgconv.UUIDToPgtype(v.ID()),
		v.Status().String(),
		pgconv.TimePtrToPgtype(v.RedemptionDate()),
		pgconv.UUIDPtrToPgtype(v.LinkedBookingID()),
		pgconv.StringPtrToPgtype(v.Notes()),
		pgconv.TimeToPgtype(v.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update voucher", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("voucher not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *VoucherRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, expireLapsedVouchersSQL, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire lapsed vouchers", err)
	}
	return tag.RowsAffected(), nil
}
