// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SmartDish Contributors

// Package token issues and verifies the signed session tokens returned by
// a successful login. Tokens are stateless: signature plus expiry is the
// whole lifecycle, there is no revocation.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/smartdish/accounts/internal/account"
)

// Claims is the session token payload: the registered subject holds the
// account email, Role carries the access level.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer mints and verifies HS256-signed session tokens with a fixed
// validity window.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer. The secret must be non-empty and the
// validity window positive.
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, oops.Errorf("signing secret is required")
	}
	if ttl <= 0 {
		return nil, oops.Errorf("token validity window must be positive, got %s", ttl)
	}
	return &Issuer{secret: secret, ttl: ttl}, nil
}

// Issue creates a signed token bound to the email and role.
func (i *Issuer) Issue(email string, role account.Role) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role: string(role),
	})

	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses the token, checks signature and expiry, and returns its
// claims.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	if !tok.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("session token is not valid")
	}
	return claims, nil
}
