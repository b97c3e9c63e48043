package handler

import (
	"net/http"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/handler/api"
	"voucher-engine/internal/handler/middleware"
	"voucher-engine/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Vouchers *api.VoucherHandler
	Bookings *api.BookingHandler
	Admin    *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, handlers Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, handlers, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		adminOnly := []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleAdmin)}
		addRoutes(apiGroup.Group("/admin"), []route{
			{Method: http.MethodPost, Path: "/vouchers", Handler: h.Admin.IssueVoucher, Mw: adminOnly},
			{Method: http.MethodPost, Path: "/vouchers/sweep", Handler: h.Admin.SweepExpiredVouchers, Mw: adminOnly},
		})

		addRoutes(apiGroup.Group("/vouchers"), []route{
			{Method: http.MethodPost, Path: "/validate", Handler: h.Vouchers.Validate},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Vouchers.Get},
			{Method: http.MethodPost, Path: "/:id/redeem", Handler: h.Vouchers.Redeem},
		})

		addRoutes(apiGroup.Group("/bookings"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Bookings.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Bookings.Get},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Bookings.Cancel},
			{Method: http.MethodPost, Path: "/:id/reschedule", Handler: h.Bookings.Reschedule},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
