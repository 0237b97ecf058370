// Package jwt validates the HMAC bearer tokens issued by the surrounding
// account layer. Only validation lives here; issuing flows are out of scope.
package jwt

import (
	"errors"
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"

	"bloodbank/internal/platform/middleware"
)

// Validator checks HS256 tokens signed with the shared key.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

type tokenClaims struct {
	Role string `json:"role"`
	gojwt.RegisteredClaims
}

// ValidateToken parses and verifies a token, returning the actor identity.
func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims := &tokenClaims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	if claims.Role != middleware.RoleDonor && claims.Role != middleware.RoleRecipient {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return &middleware.JWTClaims{ActorID: claims.Subject, Role: claims.Role}, nil
}
