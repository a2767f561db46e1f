package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// RefreshHandler serves POST /jwt/refresh and POST /api/auth/refresh. The
// request must be authenticated with a refresh token carrying JWT_REFRESH.
type RefreshHandler struct {
	Sessions *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Refresh access token
//	@Description	Mints a new access token in the presented refresh token's family. The refresh token is not rotated.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.TokenResponse	"access_token, access_token_expiry"
//	@Failure		403	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200	{string}	Cache-Control			"no-store"
//	@Router			/jwt/refresh [post]
//	@Router			/api/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.Sessions.Refresh(r.Context(), PrincipalFromContext(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokens)
}
