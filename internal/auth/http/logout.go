package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/service"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// LogoutHandler serves POST /jwt/logout.
type LogoutHandler struct {
	Sessions *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented token's family. Accepts a refresh token carrying JWT_LOGOUT or an access token.
//	@Description	Revoking an already revoked family is not an error, but the revoked token itself is refused by the bearer filter.
//	@Tags			Tokens
//	@Security		BearerAuth
//	@Success		204	"Family revoked"
//	@Failure		403	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/jwt/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), PrincipalFromContext(r.Context())); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
