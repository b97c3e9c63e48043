package readstore

import (
	"context"

	"voucher-engine/internal/infra"
	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/infra/repository/converter"
	"voucher-engine/internal/pkg/pgconv"
	"voucher-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	selectBookingViewByIDSQL = `
SELECT ` + converter.BookingColumns + `, v.code
FROM bookings b
LEFT JOIN vouchers v ON v.id = b.voucher_id
WHERE b.id = $1`

	selectBookingsByUserFirstPageSQL = `
SELECT ` + converter.BookingColumns + `, v.code
FROM bookings b
LEFT JOIN vouchers v ON v.id = b.voucher_id
WHERE b.user_id = $1
ORDER BY b.created_at DESC, b.id DESC
LIMIT $2`

	selectBookingsByUserKeysetSQL = `
SELECT ` + converter.BookingColumns + `, v.code
FROM bookings b
LEFT JOIN vouchers v ON v.id = b.voucher_id
WHERE b.user_id = $1
  AND (b.created_at, b.id) < ($2, $3)
ORDER BY b.created_at DESC, b.id DESC
LIMIT $4`
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	view, err := scanBookingView(r.db.QueryRow(ctx, selectBookingViewByIDSQL, pgconv.UUIDToPgtype(id)))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return view, nil
}

func (r *BookingReadStore) ListByUser(ctx context.Context, userID uuid.UUID, after *queries.CursorKey, limit int) ([]*queries.BookingView, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = r.db.Query(ctx, selectBookingsByUserFirstPageSQL, pgconv.UUIDToPgtype(userID), limit)
	} else {
		rows, err = r.db.Query(ctx, selectBookingsByUserKeysetSQL,
			pgconv.UUIDToPgtype(userID),
			pgconv.TimeToPgtype(after.CreatedAt),
			pgconv.UUIDToPgtype(after.ID),
			limit,
		)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	result := make([]*queries.BookingView, 0, limit)
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", err)
	}
	return result, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		b    converter.BookingRow
		code pgtype.Text
	)
	if err := row.Scan(append(b.ScanTargets(), &code)...); err != nil {
		return nil, err
	}
	return b.ToView(code)
}
