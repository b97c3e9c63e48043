//go:build unit

package middleware_test

import (
	"net/http"
	"testing"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/handler/middleware"
	"voucher-engine/internal/pkg/config"
	"voucher-engine/internal/pkg/jwt"
	"voucher-engine/internal/usecase"
	"voucher-engine/tests/common/authtest"
	"voucher-engine/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *authtest.JWTHelper) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.NewTestConfig().JWT
	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(jwt.NewVerifier(cfg.Secret, cfg.Leeway)))

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireRoleAtLeast(user.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, authtest.NewJWTHelper(cfg)
}

func TestRequireAuth(t *testing.T) {
	router, tokens := newAuthRouter(t)

	t.Run("valid token exposes the actor", func(t *testing.T) {
		id, token := tokens.NewCustomer(t)

		w := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, token)

		var got struct {
			ID   uuid.UUID `json:"id"`
			Role string    `json:"role"`
		}
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "customer", got.Role)
	})

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		message string
	}{
		{
			name:    "missing token",
			token:   func(*testing.T) string { return "" },
			message: "Access token required",
		},
		{
			name:    "garbage token",
			token:   func(*testing.T) string { return "not-a-jwt" },
			message: "Invalid or expired token",
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				return tokens.CreateExpiredToken(t, uuid.New(), user.RoleCustomer)
			},
			message: "Invalid or expired token",
		},
		{
			name: "foreign signature",
			token: func(t *testing.T) string {
				other := authtest.NewJWTHelper(config.JWTConfig{Secret: "someone-else"})
				return other.GenerateToken(t, uuid.New(), user.RoleAdmin)
			},
			message: "Invalid or expired token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, tt.token(t))
			httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, tt.message)
		})
	}
}

func TestRequireRoleAtLeast(t *testing.T) {
	router, tokens := newAuthRouter(t)

	t.Run("customer is forbidden", func(t *testing.T) {
		_, token := tokens.NewCustomer(t)
		w := httptest.PerformRequest(t, router, http.MethodGet, "/admin", nil, token)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "Insufficient permissions")
	})

	t.Run("admin passes", func(t *testing.T) {
		_, token := tokens.NewAdmin(t)
		w := httptest.PerformRequest(t, router, http.MethodGet, "/admin", nil, token)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
