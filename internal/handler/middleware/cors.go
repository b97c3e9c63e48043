package middleware

import (
	"log/slog"
	"slices"

	"voucher-engine/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerRetryAfter     = "Retry-After"
	headerRequestID      = "X-Request-ID"
	headerReplayed       = "Idempotent-Replayed"
)

// NewCORSMiddleware always lets browsers send Idempotency-Key and read the
// retry and replay headers, whatever the configured lists say.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeaders(cfg.AllowHeaders, headerIdempotencyKey),
		ExposeHeaders:    withHeaders(cfg.ExposeHeaders, headerRetryAfter, headerRequestID, headerReplayed),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allow_origins", corsCfg.AllowOrigins,
		"allow_headers", corsCfg.AllowHeaders,
		"expose_headers", corsCfg.ExposeHeaders,
	)
	return cors.New(corsCfg)
}

func withHeaders(configured []string, required ...string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}
