package authsdk_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/authsdk"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// fakeServer imitates the token endpoints. Access tokens are "access-N";
// only the most recently issued one is accepted by the protected route.
type fakeServer struct {
	*httptest.Server

	mu           sync.Mutex
	validAccess  string
	validRefresh string
	issued       int
	refreshBody  func(w http.ResponseWriter) bool // returns true if it wrote the response

	logins     atomic.Int32
	refreshes  atomic.Int32
	protected  atomic.Int32
	logouts    atomic.Int32
	lastLogout atomic.Value

	refreshDelay time.Duration
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jwt/tokens", f.login)
	mux.HandleFunc("POST /api/auth/refresh", f.refresh)
	mux.HandleFunc("POST /jwt/logout", f.logout)
	mux.HandleFunc("GET /api/protected", f.resource)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) client() *authsdk.Client {
	return authsdk.NewClient(f.URL, authsdk.WithTimeout(5*time.Second))
}

func (f *fakeServer) nextAccessLocked() string {
	f.issued++
	f.validAccess = fmt.Sprintf("access-%d", f.issued)
	return f.validAccess
}

// expireAccess makes the current access token unusable.
func (f *fakeServer) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validAccess = ""
}

func (f *fakeServer) revokeRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validRefresh = ""
}

func (f *fakeServer) login(w http.ResponseWriter, r *http.Request) {
	f.logins.Add(1)
	user, pass, ok := r.BasicAuth()
	if !ok || user != "j.jameson" || pass != "password" {
		w.Header().Set("WWW-Authenticate", `Basic realm="tokengate"`)
		authsdk.ErrInvalidCredentials.WriteError(w)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.validRefresh = "refresh-1"
	expiry := time.Now().Add(time.Hour).UTC()
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:        f.nextAccessLocked(),
		AccessTokenExpiry:  time.Now().Add(5 * time.Minute).UTC(),
		RefreshToken:       f.validRefresh,
		RefreshTokenExpiry: &expiry,
	})
}

func (f *fakeServer) refresh(w http.ResponseWriter, r *http.Request) {
	f.refreshes.Add(1)
	if f.refreshDelay > 0 {
		time.Sleep(f.refreshDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshBody != nil && f.refreshBody(w) {
		return
	}
	token, _ := httpx.BearerToken(r.Header.Get("Authorization"))
	if token == "" || token != f.validRefresh {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:       f.nextAccessLocked(),
		AccessTokenExpiry: time.Now().Add(5 * time.Minute).UTC(),
	})
}

func (f *fakeServer) logout(w http.ResponseWriter, r *http.Request) {
	f.logouts.Add(1)
	token, _ := httpx.BearerToken(r.Header.Get("Authorization"))
	f.lastLogout.Store(token)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeServer) resource(w http.ResponseWriter, r *http.Request) {
	f.protected.Add(1)
	token, _ := httpx.BearerToken(r.Header.Get("Authorization"))

	f.mu.Lock()
	valid := token != "" && token == f.validAccess
	f.mu.Unlock()
	if !valid {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProtectedResponse{
		Subject:     "j.jameson",
		Authorities: []string{"ROLE_USER"},
		Message:     "Hello, j.jameson (" + strings.TrimPrefix(token, "access-") + ")",
	})
}

func writeRaw(status int, body string) func(w http.ResponseWriter) bool {
	return func(w http.ResponseWriter) bool {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return true
	}
}
