//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/pkg/config"
	pkgjwt "voucher-engine/internal/pkg/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const tokenLifetime = time.Hour

// JWTHelper mints tokens the way the external identity provider would.
type JWTHelper struct {
	secret []byte
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{secret: []byte(cfg.Secret)}
}

// Sign signs arbitrary claims with the helper's secret and HS256.
func (h *JWTHelper) Sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	return h.Sign(t, claimsFor(userID, role, time.Now(), tokenLifetime))
}

// NewCustomer returns a fresh customer identity and its token.
func (h *JWTHelper) NewCustomer(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	return id, h.GenerateToken(t, id, user.RoleCustomer)
}

func (h *JWTHelper) NewAdmin(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	return id, h.GenerateToken(t, id, user.RoleAdmin)
}

// CreateExpiredToken returns a token that expired an hour ago.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	return h.Sign(t, claimsFor(userID, role, time.Now().Add(-2*tokenLifetime), tokenLifetime))
}

func claimsFor(userID uuid.UUID, role user.Role, issuedAt time.Time, lifetime time.Duration) pkgjwt.Claims {
	return pkgjwt.Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
	}
}
