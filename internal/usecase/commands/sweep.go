package commands

import (
	"context"
	"log/slog"

	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/usecase/shared"
)

//go:generate mockgen -source=sweep.go -destination=../../../tests/mock/commands/sweep.go -package=commandsmock

type SweepCommands interface {
	SweepExpiredVouchers(ctx context.Context) (*SweepResult, error)
}

type sweepUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewSweepCommands(uow shared.UnitOfWork, clk clock.Clock) SweepCommands {
	return &sweepUseCaseImpl{uow: uow, clock: clk}
}

// SweepExpiredVouchers is idempotent: a second run at the same instant updates nothing.
func (uc *sweepUseCaseImpl) SweepExpiredVouchers(ctx context.Context) (*SweepResult, error) {
	now := uc.clock.Now()

	count, err := shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (int64, error) {
		return tx.Vouchers().ExpireLapsed(ctx, now)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("expired vouchers swept", "updated_count", count, "as_of", now)

	// Key housekeeping is best effort and never fails the sweep.
	purged, err := shared.WithinResult(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (int64, error) {
		return tx.Idempotency().DeleteExpired(ctx, now)
	})
	if err != nil {
		slog.Warn("failed to purge expired idempotency keys", "error", err.Error())
	} else if purged > 0 {
		slog.Info("expired idempotency keys purged", "purged_count", purged)
	}

	return &SweepResult{UpdatedCount: count}, nil
}
