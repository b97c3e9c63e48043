//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/pkg/config"
	pkgjwt "voucher-engine/internal/pkg/jwt"
	"voucher-engine/tests/common/authtest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secret"

func TestVerifier_Verify(t *testing.T) {
	verifier := pkgjwt.NewVerifier(secret, 30*time.Second)
	tokens := authtest.NewJWTHelper(config.JWTConfig{Secret: secret})

	t.Run("valid token keeps subject and role", func(t *testing.T) {
		userID := uuid.New()

		claims, err := verifier.Verify(tokens.GenerateToken(t, userID, user.RoleAdmin))

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := verifier.Verify(tokens.CreateExpiredToken(t, uuid.New(), user.RoleCustomer))
		assert.ErrorIs(t, err, pkgjwt.ErrExpiredToken)
	})

	t.Run("expiry within the leeway is accepted", func(t *testing.T) {
		token := tokens.Sign(t, pkgjwt.Claims{
			UserID: uuid.New(),
			Role:   "customer",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
			},
		})

		_, err := verifier.Verify(token)
		assert.NoError(t, err)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "foreign signature",
			token: func(t *testing.T) string {
				return authtest.NewJWTHelper(config.JWTConfig{Secret: "other"}).GenerateToken(t, uuid.New(), user.RoleCustomer)
			},
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return tokens.Sign(t, pkgjwt.Claims{UserID: uuid.New(), Role: "customer"})
			},
		},
		{
			name: "no subject",
			token: func(t *testing.T) string {
				return tokens.Sign(t, pkgjwt.Claims{
					Role:             "customer",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
				})
			},
		},
		{
			name: "other HMAC algorithm",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, pkgjwt.Claims{
					UserID:           uuid.New(),
					Role:             "customer",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
				}).SignedString([]byte(secret))
				require.NoError(t, err)
				return token
			},
		},
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not-a-jwt" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token(t))
			assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
		})
	}
}
