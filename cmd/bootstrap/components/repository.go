package components

import (
	"voucher-engine/internal/infra/readstore"
	"voucher-engine/internal/infra/uow"
	"voucher-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories for writes are opened per transaction by the unit of work;
// the read stores query the pool directly.
func newPostgresPersistence(pool *pgxpool.Pool, cfg config.DBConfig) Persistence {
	return Persistence{
		UoW:      uow.NewPostgresUoW(pool, cfg),
		Vouchers: readstore.NewVoucherReadStore(pool),
		Bookings: readstore.NewBookingReadStore(pool),
	}
}
