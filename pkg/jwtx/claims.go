package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Values of the token_use claim. A codec only accepts tokens carrying its
// own use, which keeps access and refresh tokens from being mistaken for
// one another even when they share key material.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims is the JWT body for both token kinds.
type Claims struct {
	jwt.RegisteredClaims

	// Use is "access" or "refresh".
	Use string `json:"token_use"`

	// Authorities are capability names, already normalised by the issuer.
	Authorities []string `json:"authorities"`
}

// NewClaims fills the registered claims from plain values.
func NewClaims(use, issuer, id, subject string, authorities []string, issuedAt, expiresAt time.Time) Claims {
	if authorities == nil {
		authorities = []string{}
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Use:         use,
		Authorities: authorities,
	}
}

// IssuedAtTime returns iat in UTC, or the zero time when absent.
func (c Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.UTC()
}

// ExpiresAtTime returns exp in UTC, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.UTC()
}
