package usecase

import (
	"voucher-engine/internal/domain/user"
	"voucher-engine/internal/pkg/jwt"
)

// TokenValidator turns a bearer token into the caller the use cases act for.
type TokenValidator interface {
	ValidateToken(tokenString string) (user.Actor, error)
}

type tokenValidatorImpl struct {
	verifier *jwt.Verifier
}

func NewTokenValidator(verifier *jwt.Verifier) TokenValidator {
	return &tokenValidatorImpl{verifier: verifier}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (user.Actor, error) {
	claims, err := t.verifier.Verify(tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return user.Actor{}, err
	}
	return user.NewActor(claims.UserID, role), nil
}
