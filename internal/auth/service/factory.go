package service

import (
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/google/uuid"
)

const (
	// GrantPrefix marks the capabilities a refresh token may hand on to the
	// access tokens minted from it.
	GrantPrefix = "GRANT_"

	AuthorityRefresh = "JWT_REFRESH"
	AuthorityLogout  = "JWT_LOGOUT"

	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// GrantedAuthorities keeps the GRANT_ prefixed entries of capabilities and
// strips the prefix. Duplicates collapse; the result is never nil.
func GrantedAuthorities(capabilities []string) []string {
	out := make([]string, 0, len(capabilities))
	for _, c := range capabilities {
		a, ok := strings.CutPrefix(c, GrantPrefix)
		if !ok || a == "" || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AccessTokenFactory mints access tokens. The zero value uses
// DefaultAccessTTL and the wall clock.
type AccessTokenFactory struct {
	TTL time.Duration
	Now func() time.Time
}

// Mint narrows capabilities to the granted subset and stamps the lifetime.
// An empty granted set is valid.
func (f AccessTokenFactory) Mint(capabilities []string, subject, id string) (domain.Token, error) {
	return mint(id, subject, GrantedAuthorities(capabilities), clock(f.Now), ttlOr(f.TTL, DefaultAccessTTL))
}

// FromRefresh mints an access token in the same family as refresh.
func (f AccessTokenFactory) FromRefresh(refresh domain.Token) (domain.Token, error) {
	return f.Mint(refresh.Authorities, refresh.Subject, refresh.ID)
}

// RefreshTokenFactory mints refresh tokens for authenticated users. Each
// token gets a fresh id, which becomes the family id of every access token
// derived from it.
type RefreshTokenFactory struct {
	TTL   time.Duration
	Now   func() time.Time
	NewID func() string
}

func (f RefreshTokenFactory) Mint(user domain.User) (domain.Token, error) {
	authorities := make([]string, 0, len(user.Authorities)+2)
	authorities = append(authorities, AuthorityRefresh, AuthorityLogout)
	for _, a := range user.Authorities {
		authorities = append(authorities, GrantPrefix+a)
	}

	newID := f.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return mint(newID(), user.Username, authorities, clock(f.Now), ttlOr(f.TTL, DefaultRefreshTTL))
}

func mint(id, subject string, authorities []string, now time.Time, ttl time.Duration) (domain.Token, error) {
	if authorities == nil {
		authorities = []string{}
	}
	t := domain.Token{
		ID:          id,
		Subject:     subject,
		Authorities: authorities,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl).Truncate(time.Second),
	}
	if err := t.Validate(); err != nil {
		return domain.Token{}, err
	}
	return t, nil
}

// clock returns the current instant at the precision tokens are encoded with.
func clock(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Second)
}

func ttlOr(ttl, def time.Duration) time.Duration {
	if ttl == 0 {
		return def
	}
	return ttl
}
