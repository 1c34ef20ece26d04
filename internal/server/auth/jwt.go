// Package auth issues and checks HS256 access tokens and carries the
// authenticated principal through request contexts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the caller's role. The subject is
// the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

func GenerateToken(subject string, role Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrValidation)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns the principal it names.
// Expired tokens fail with common.ErrTokenExpired, anything else that does
// not verify with common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, common.ErrTokenExpired
		}
		return Anonymous, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return Anonymous, common.ErrInvalidToken
	}

	return Principal{Subject: claims.Subject, Role: claims.Role}, nil
}
