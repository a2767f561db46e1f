package authsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// MaxRefreshAttempts is how many refreshes may fail in a row before the
// session gives up and forgets its tokens.
const MaxRefreshAttempts = 3

// State is the coarse state of a Session.
type State int

const (
	StateUnauthenticated State = iota
	// StateAuthenticated holds an access token but no refresh token.
	StateAuthenticated
	// StateRefreshable holds both tokens.
	StateRefreshable
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshable:
		return "authenticated (refreshable)"
	default:
		return "unknown"
	}
}

// Session holds one user's tokens and keeps them usable. It is safe for
// concurrent use.
type Session struct {
	client *Client

	mu              sync.Mutex
	accessToken     string
	refreshToken    string
	failedRefreshes int
	// generation changes on login and on every reset so that a refresh
	// finishing after a logout cannot bring old tokens back.
	generation uint64

	refreshGroup singleflight.Group
}

// Login replaces the session with a fresh token pair. On any failure the
// session ends up unauthenticated.
func (s *Session) Login(ctx context.Context, username, password string) error {
	tokens, err := s.client.Login(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.resetLocked()
		return err
	}
	s.generation++
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.failedRefreshes = 0
	return nil
}

// AccessResource fetches the protected resource. If that fails and a
// refresh token is held, it refreshes and retries exactly once.
func (s *Session) AccessResource(ctx context.Context) (*ProtectedResponse, error) {
	access, refresh := s.tokens()
	if access == "" && refresh == "" {
		return nil, ErrNotAuthenticated
	}

	var err error
	if access != "" {
		var res ProtectedResponse
		if res, err = s.client.Protected(ctx, access); err == nil {
			return &res, nil
		}
	} else {
		err = ErrNotAuthenticated
	}
	if refresh == "" {
		return nil, err
	}

	// Another caller may already have replaced the token we just failed with.
	if current, _ := s.tokens(); current == access {
		if rerr := s.Refresh(ctx); rerr != nil {
			return nil, fmt.Errorf("access resource: %w", errors.Join(err, rerr))
		}
	}

	access, _ = s.tokens()
	if access == "" {
		return nil, ErrNotAuthenticated
	}
	res, err := s.client.Protected(ctx, access)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Refresh trades the refresh token for a new access token. Concurrent
// calls share a single request and a single outcome. The shared request is
// detached from any one caller's ctx and bounded by the client timeout; a
// caller whose ctx ends first gets ctx.Err() and the request carries on for
// the others.
func (s *Session) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch := s.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) refresh(ctx context.Context) error {
	s.mu.Lock()
	refresh, gen := s.refreshToken, s.generation
	s.mu.Unlock()

	if refresh == "" {
		return ErrNoRefreshToken
	}

	tokens, err := s.client.Refresh(ctx, refresh)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrNotAuthenticated
	}
	if err != nil {
		s.failedRefreshes++
		if s.failedRefreshes >= MaxRefreshAttempts {
			s.resetLocked()
		}
		return err
	}

	s.accessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.refreshToken = tokens.RefreshToken
	}
	s.failedRefreshes = 0
	return nil
}

// Logout asks the server to revoke the session's family and forgets the
// tokens whatever the server answered. The refresh token is presented
// when held, the access token otherwise.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.refreshToken
	if token == "" {
		token = s.accessToken
	}
	s.resetLocked()
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	return s.client.Logout(ctx, token)
}

func (s *Session) resetLocked() {
	s.generation++
	s.accessToken = ""
	s.refreshToken = ""
	s.failedRefreshes = 0
}

func (s *Session) tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *Session) State() State {
	access, refresh := s.tokens()
	switch {
	case refresh != "":
		return StateRefreshable
	case access != "":
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

func (s *Session) AccessToken() string {
	access, _ := s.tokens()
	return access
}

func (s *Session) RefreshToken() string {
	_, refresh := s.tokens()
	return refresh
}

func (s *Session) FailedRefreshAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedRefreshes
}
