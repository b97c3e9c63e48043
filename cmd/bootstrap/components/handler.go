package components

import (
	"voucher-engine/internal/handler"
	"voucher-engine/internal/handler/api"
	"voucher-engine/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewVoucherHandler,
		api.NewBookingHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		func(v *api.VoucherHandler, b *api.BookingHandler, a *api.AdminHandler) handler.Handlers {
			return handler.Handlers{Vouchers: v, Bookings: b, Admin: a}
		},
	),
	fx.Invoke(handler.NewRouter),
)
