package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// Reason explains a rejected Decision.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnrecognized
	ReasonRevoked
	ReasonExpired
	ReasonStoreUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "accepted"
	case ReasonUnrecognized:
		return "unrecognized"
	case ReasonRevoked:
		return "revoked"
	case ReasonExpired:
		return "expired"
	case ReasonStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Decision is the verdict on a classified token. Principal is only set
// when Accepted.
type Decision struct {
	Accepted  bool
	Reason    Reason
	Principal domain.Principal
}

func reject(r Reason) Decision {
	return Decision{Reason: r, Principal: domain.Anonymous()}
}

// Verifier accepts a token iff its id is not revoked and now < ExpiresAt.
type Verifier struct {
	Revocations store.Revocations
	Now         func() time.Time
	Metrics     *Metrics
}

// Verify checks revocation first, then expiry. A failing revocation lookup
// rejects the token.
func (v *Verifier) Verify(ctx context.Context, c Classification) Decision {
	d := v.verify(ctx, c)
	v.Metrics.observeVerification(c.Kind, d.Reason)
	return d
}

func (v *Verifier) verify(ctx context.Context, c Classification) Decision {
	if !c.Recognized() {
		return reject(ReasonUnrecognized)
	}

	revoked, err := v.Revocations.Exists(ctx, c.Token.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("revocation lookup failed",
			slog.String("token_kind", c.Kind.String()),
			slog.Any("error", err),
		)
		return reject(ReasonStoreUnavailable)
	}
	if revoked {
		return reject(ReasonRevoked)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if c.Token.ExpiredAt(now()) {
		return reject(ReasonExpired)
	}

	return Decision{Accepted: true, Reason: ReasonNone, Principal: domain.Authenticated(c.Kind, c.Token)}
}
