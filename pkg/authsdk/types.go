package authsdk

import (
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
)

// ErrorResponse is the body of every error returned by the service.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_token"`
	ErrorDescription string `json:"error_description" example:"token revoked"`
}

// TokenResponse is returned by the login and refresh endpoints. Refresh
// fields are absent when the server did not issue or rotate a refresh token.
type TokenResponse struct {
	AccessToken        string     `json:"access_token"`
	AccessTokenExpiry  time.Time  `json:"access_token_expiry"`
	RefreshToken       string     `json:"refresh_token,omitempty"`
	RefreshTokenExpiry *time.Time `json:"refresh_token_expiry,omitempty"`
}

// ProtectedResponse is the body of GET /api/protected.
type ProtectedResponse struct {
	Subject     string   `json:"subject" example:"j.jameson"`
	Authorities []string `json:"authorities" example:"ROLE_USER"`
	Message     string   `json:"message" example:"Hello, j.jameson"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set by
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or "error: ...".
type HealthChecks struct {
	Database    string `json:"database"`
	Revocations string `json:"revocations,omitempty"`
	Signer      string `json:"signer"`
}

// JWKSResponse holds the public keys that verify access tokens.
type JWKSResponse jwtx.JWKS
