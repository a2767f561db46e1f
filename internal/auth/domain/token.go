package domain

import (
	"errors"
	"slices"
	"time"
)

var ErrInvalidLifetime = errors.New("domain: token must expire after it is created")

// Kind tells access tokens and refresh tokens apart.
type Kind int

const (
	KindAccess Kind = iota + 1
	KindRefresh
)

func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "access"
	case KindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Token is an issued credential. Values are never modified after minting;
// revoking one adds a Revocation record instead. Minted and decoded tokens
// always carry a non-nil Authorities slice, and a nil slice encodes the
// same as an empty one.
type Token struct {
	ID          string
	Subject     string
	Authorities []string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (t Token) Validate() error {
	if !t.ExpiresAt.After(t.CreatedAt) {
		return ErrInvalidLifetime
	}
	return nil
}

// ExpiredAt reports whether t is no longer usable at now. The expiry
// instant itself is already expired.
func (t Token) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t Token) HasAuthority(a string) bool {
	return slices.Contains(t.Authorities, a)
}

// Tokens is the body returned by the login and refresh endpoints. Refresh
// fields are omitted when no refresh token was issued.
type Tokens struct {
	AccessToken        string     `json:"access_token"`
	AccessTokenExpiry  time.Time  `json:"access_token_expiry"`
	RefreshToken       string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiry *time.Time `json:"refresh_token_expiry,omitempty"`
}
