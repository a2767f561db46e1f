package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
)

// SessionService issues, refreshes and revokes token families.
//
// A login mints one refresh token and one access token sharing its id.
// Every refresh mints another access token with that same id, so revoking
// the id at logout ends the whole family at once.
type SessionService struct {
	AccessFactory  AccessTokenFactory
	RefreshFactory RefreshTokenFactory
	AccessCodec    TokenCodec
	RefreshCodec   TokenCodec
	Revocations    store.Revocations
	Metrics        *Metrics
	Now            func() time.Time
}

// Login issues a new family for an authenticated user.
func (s *SessionService) Login(ctx context.Context, user domain.User) (domain.Tokens, error) {
	refresh, err := s.RefreshFactory.Mint(user)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("mint refresh token: %w", err)
	}
	access, err := s.AccessFactory.FromRefresh(refresh)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("mint access token: %w", err)
	}

	rawRefresh, err := s.RefreshCodec.Encode(refresh)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("encode refresh token: %w", err)
	}
	rawAccess, err := s.AccessCodec.Encode(access)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("encode access token: %w", err)
	}

	s.Metrics.observeIssued(domain.KindRefresh)
	s.Metrics.observeIssued(domain.KindAccess)
	slogx.FromContext(ctx).Info("session issued",
		slog.String("subject", refresh.Subject),
		slog.String("family_id", refresh.ID),
	)

	refreshExpiry := refresh.ExpiresAt
	return domain.Tokens{
		AccessToken:        rawAccess,
		AccessTokenExpiry:  access.ExpiresAt,
		RefreshToken:       rawRefresh,
		RefreshTokenExpiry: &refreshExpiry,
	}, nil
}

// Refresh mints a new access token from a verified refresh principal. The
// refresh token is not rotated.
func (s *SessionService) Refresh(ctx context.Context, p domain.Principal) (domain.Tokens, error) {
	switch p.Kind {
	case domain.PrincipalRefresh:
	case domain.PrincipalAnonymous:
		return domain.Tokens{}, ErrUnauthenticated
	default:
		return domain.Tokens{}, ErrWrongKind
	}
	if !p.Token.HasAuthority(AuthorityRefresh) {
		return domain.Tokens{}, ErrMissingAuthority
	}

	access, err := s.AccessFactory.FromRefresh(p.Token)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("mint access token: %w", err)
	}
	rawAccess, err := s.AccessCodec.Encode(access)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("encode access token: %w", err)
	}

	s.Metrics.observeIssued(domain.KindAccess)
	slogx.FromContext(ctx).Debug("access token refreshed",
		slog.String("subject", access.Subject),
		slog.String("family_id", access.ID),
	)
	return domain.Tokens{AccessToken: rawAccess, AccessTokenExpiry: access.ExpiresAt}, nil
}

// Logout revokes the presented token's id. A refresh token must carry
// JWT_LOGOUT; an access token is always allowed to end its own family.
//
// When an access token is presented the record is kept long enough to
// outlive the family's refresh token too, otherwise housekeeping could
// drop it while that refresh token is still valid.
func (s *SessionService) Logout(ctx context.Context, p domain.Principal) error {
	var keepUntil time.Time
	switch p.Kind {
	case domain.PrincipalAnonymous:
		return ErrUnauthenticated
	case domain.PrincipalRefresh:
		if !p.Token.HasAuthority(AuthorityLogout) {
			return ErrMissingAuthority
		}
		keepUntil = p.Token.ExpiresAt
	case domain.PrincipalAccess:
		keepUntil = p.Token.CreatedAt.Add(ttlOr(s.RefreshFactory.TTL, DefaultRefreshTTL))
		if p.Token.ExpiresAt.After(keepUntil) {
			keepUntil = p.Token.ExpiresAt
		}
	default:
		return ErrWrongKind
	}

	if err := s.revoke(ctx, p.Token.ID, keepUntil); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("session revoked",
		slog.String("subject", p.Token.Subject),
		slog.String("family_id", p.Token.ID),
	)
	return nil
}

// Revoke marks t's id as revoked until t expires. Revoking an id twice is
// a no-op.
func (s *SessionService) Revoke(ctx context.Context, t domain.Token) error {
	return s.revoke(ctx, t.ID, t.ExpiresAt)
}

func (s *SessionService) revoke(ctx context.Context, id string, keepUntil time.Time) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	err := s.Revocations.Insert(ctx, domain.Revocation{
		TokenID:   id,
		RevokedAt: now().UTC(),
		KeepUntil: keepUntil,
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.Metrics.observeRevocation()
	return nil
}
