package httpx

import (
	"net/http"
	"strings"
)

// BearerPrefix is the scheme prefix of an Authorization header carrying a
// bearer token. Matching is case sensitive.
const BearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value. It
// reports false when the header does not use the bearer scheme or carries
// an empty token.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetBearer sets the Authorization header on r.
func SetBearer(r *http.Request, token string) {
	r.Header.Set("Authorization", BearerPrefix+token)
}
