package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/idx"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// CredentialService checks usernames and passwords against the user store.
type CredentialService struct {
	Store  store.Store
	Hasher cryptox.Argon2
	Now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(s store.Store, hasher cryptox.Argon2) *CredentialService {
	return &CredentialService{Store: s, Hasher: hasher}
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials, and both pay for one
// argon2 evaluation.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.Verify(password, s.dummy())
			l.Info("login for unknown user", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login with wrong password", slog.String("username", username))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	return u, nil
}

// EnsureUser creates the user unless the username already exists. The
// returned bool reports whether a user was created.
func (s *CredentialService) EnsureUser(ctx context.Context, username, password string, authorities []string) (domain.User, bool, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	createdAt := now().UTC().Truncate(time.Second)

	var (
		user     domain.User
		inserted bool
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByUsername(ctx, username)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user = domain.User{
			ID:           idx.NewAt(createdAt).String(),
			Username:     username,
			PasswordHash: hash,
			Authorities:  authorities,
			CreatedAt:    createdAt,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return domain.User{}, false, fmt.Errorf("ensure user %q: %w", username, err)
	}
	return user, inserted, nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("tokengate-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// SeedUser is one entry of the seed list.
type SeedUser struct {
	Username    string
	Password    string
	Authorities []string
}

// ParseSeedUsers reads "user:password:auth1|auth2,user2:password2:auth".
// The authority list may be empty.
func ParseSeedUsers(list string) ([]SeedUser, error) {
	var out []SeedUser
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("seed user %q: want user:password[:authorities]", entry)
		}

		su := SeedUser{Username: parts[0], Password: parts[1], Authorities: []string{}}
		if len(parts) == 3 {
			for _, a := range strings.Split(parts[2], "|") {
				if a = strings.TrimSpace(a); a != "" {
					su.Authorities = append(su.Authorities, a)
				}
			}
		}
		out = append(out, su)
	}
	return out, nil
}
