package components

import (
	"context"
	"log/slog"

	"voucher-engine/internal/infra/events"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/shared"
	"voucher-engine/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewPublisher,
		func(uow shared.UnitOfWork, pub events.Publisher, clk clock.Clock, cfg config.Config) *worker.OutboxRelay {
			return worker.NewOutboxRelay(uow, pub, clk, cfg.Events)
		},
		func(sweep commands.SweepCommands, cfg config.Config) *worker.SweepScheduler {
			return worker.NewSweepScheduler(sweep, cfg.Sweeper.Interval, cfg.Sweeper.Enabled)
		},
	),
	fx.Invoke(startWorkers),
)

// NewPublisher connects to NATS when NATS_URL is set and otherwise only logs events.
func NewPublisher(lc fx.Lifecycle, cfg config.Config) (events.Publisher, error) {
	var pub events.Publisher
	if cfg.Events.NATSURL == "" {
		slog.Info("NATS_URL not set, outbox events are logged only")
		pub = events.NewLogPublisher()
	} else {
		natsPub, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			return nil, err
		}
		pub = natsPub
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}

func startWorkers(lc fx.Lifecycle, relay *worker.OutboxRelay, sweeper *worker.SweepScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			relay.Start()
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			relay.Stop()
			return nil
		},
	})
}
