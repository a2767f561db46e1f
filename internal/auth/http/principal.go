package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal set by BearerFilter, or an
// anonymous one.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalKey{}).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous()
}

// BearerFilter resolves the Authorization header into a principal. Requests
// without a recognisable bearer token continue as anonymous; recognised
// tokens that fail verification are refused with 403.
func BearerFilter(classifier *service.Classifier, verifier *service.Verifier) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := classifier.Classify(r.Header.Get("Authorization"))
			if !c.Recognized() {
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), domain.Anonymous())))
				return
			}

			d := verifier.Verify(r.Context(), c)
			if !d.Accepted {
				slogx.FromContext(r.Context()).Info("bearer token rejected",
					"token_kind", c.Kind.String(),
					"reason", d.Reason.String(),
				)
				rejection(d.Reason).WriteError(w)
				return
			}

			ctx := slogx.With(r.Context(), "subject", d.Principal.Subject())
			next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, d.Principal)))
		})
	}
}

func rejection(reason service.Reason) *authsdk.APIError {
	switch reason {
	case service.ReasonRevoked:
		return authsdk.NewAPIError(http.StatusForbidden, authsdk.ErrorCodeInvalidToken, "token revoked")
	case service.ReasonExpired:
		return authsdk.NewAPIError(http.StatusForbidden, authsdk.ErrorCodeInvalidToken, "token expired")
	default:
		return authsdk.ErrInvalidToken
	}
}

// serviceError maps session errors to responses.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrWrongKind):
		authsdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrMissingAuthority):
		authsdk.ErrInsufficientScope.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
