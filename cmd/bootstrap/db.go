package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"voucher-engine/internal/infra/db"
	"voucher-engine/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB returns a nil pool when the memory driver is selected.
func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return nil, nil
	}

	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.Store.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		slog.Info("database migrations applied")
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
