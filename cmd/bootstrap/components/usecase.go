package components

import (
	"voucher-engine/internal/domain/booking"
	"voucher-engine/internal/domain/voucher"
	"voucher-engine/internal/pkg/clock"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/usecase"
	"voucher-engine/internal/usecase/commands"
	"voucher-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) voucher.CodeGenerator {
		return voucher.NewRandomCodeGenerator(cfg.Voucher.CodePrefix)
	},
	func(cfg config.Config) booking.ModificationPolicy {
		return booking.NewDefaultModificationPolicy(cfg.Booking.ModificationWindow, cfg.Booking.MaxReschedules)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewVoucherCommands,
		commands.NewBookingCommands,
		commands.NewSweepCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewVoucherQueries,
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
