package components

import (
	"fmt"
	"log/slog"

	"voucher-engine/internal/domain/experience"
	"voucher-engine/internal/infra/memory"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/queries"
	"voucher-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
)

// Persistence is the write and read side of whichever store is configured.
type Persistence struct {
	fx.Out

	UoW      shared.UnitOfWork
	Vouchers queries.VoucherReadStore
	Bookings queries.BookingReadStore
}

func NewPersistence(cfg config.Config, pool *pgxpool.Pool, clk clock.Clock) (Persistence, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if pool == nil {
			return Persistence{}, fmt.Errorf("postgres store selected without a database pool")
		}
		return newPostgresPersistence(pool, cfg.DB), nil
	case config.StoreDriverMemory:
		return newMemoryPersistence(cfg.Store, clk)
	default:
		return Persistence{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func newMemoryPersistence(cfg config.StoreConfig, clk clock.Clock) (Persistence, error) {
	store := memory.NewStore()
	now := clk.Now()
	for _, raw := range cfg.SeedExperiences {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Persistence{}, fmt.Errorf("invalid MEMORY_SEED_EXPERIENCES entry %q: %w", raw, err)
		}
		store.PutExperience(experience.ReconstructExperience(id, "seeded experience", true, now, now))
	}
	slog.Warn("using in-memory store, data is lost on restart", "seeded_experiences", len(cfg.SeedExperiences))

	return Persistence{
		UoW:      store,
		Vouchers: memory.NewVoucherReadStore(store),
		Bookings: memory.NewBookingReadStore(store),
	}, nil
}
