package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// ProtectedHandler godoc
//
//	@Summary		Protected resource
//	@Description	Echoes the caller's identity. Only access tokens are accepted.
//	@Tags			Resources
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ProtectedResponse	"subject, authorities, message"
//	@Failure		403	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/api/protected [get].
func ProtectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p.Kind != domain.PrincipalAccess {
			authsdk.ErrAccessDenied.WriteError(w)
			return
		}

		authorities := p.Authorities()
		if authorities == nil {
			authorities = []string{}
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.ProtectedResponse{
			Subject:     p.Subject(),
			Authorities: authorities,
			Message:     "Hello, " + p.Subject(),
		})
	}
}
