package readstore

import (
	"context"

	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/infra/repository/converter"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

const (
	selectVoucherByCodeSQL = `
SELECT ` + converter.VoucherColumns + `
FROM vouchers v
WHERE v.code = $1`

	selectVoucherByIDSQL = `
SELECT ` + converter.VoucherColumns + `
FROM vouchers v
WHERE v.id = $1`
)

type VoucherReadStore struct {
	db db.DBTX
}

func NewVoucherReadStore(dbtx db.DBTX) *VoucherReadStore {
	return &VoucherReadStore{db: dbtx}
}

func (r *VoucherReadStore) FindByCode(ctx context.Context, code string) (*queries.VoucherView, error) {
	var row converter.VoucherRow
	if err := r.db.QueryRow(ctx, selectVoucherByCodeSQL, code).Scan(row.ScanTargets()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("voucher not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find voucher by code", err)
	}
	return row.ToView()
}

func (r *VoucherReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.VoucherView, error) {
	var row converter.VoucherRow
	if err := r.db.QueryRow(ctx, selectVoucherByIDSQL, pgconv.UUIDToPgtype(id)).Scan(row.ScanTargets()...); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("voucher not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find voucher by ID", err)
	}
	return row.ToView()
}
