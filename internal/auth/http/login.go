package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

const basicChallenge = `Basic realm="tokengate"`

// LoginHandler serves POST /jwt/tokens.
type LoginHandler struct {
	Credentials *service.CredentialService
	Sessions    *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges HTTP Basic credentials for an access token and a refresh token.
//	@Description	Both tokens share one family id; logging out with either revokes the family.
//	@Tags			Tokens
//	@Produce		json
//	@Security		BasicAuth
//	@Success		200	{object}	authsdk.TokenResponse	"access_token, access_token_expiry, refresh_token, refresh_token_expiry"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200	{string}	Cache-Control			"no-store"
//	@Router			/jwt/tokens [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, password, ok := r.BasicAuth()
	if !ok || username == "" {
		w.Header().Set("WWW-Authenticate", basicChallenge)
		authsdk.ErrInvalidCredentials.WriteError(w)
		return
	}

	user, err := h.Credentials.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", basicChallenge)
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("authenticate failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	tokens, err := h.Sessions.Login(ctx, user)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokens)
}
