package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

type revocationsRepo struct {
	q querier
}

func (r *revocationsRepo) Exists(ctx context.Context, tokenID string) (bool, error) {
	var found bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = ?)`,
		tokenID,
	).Scan(&found)
	return found, err
}

func (r *revocationsRepo) Insert(ctx context.Context, rev domain.Revocation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO revoked_tokens (token_id, revoked_at, keep_until) VALUES (?, ?, ?)
		ON CONFLICT (token_id) DO UPDATE SET keep_until = max(revoked_tokens.keep_until, excluded.keep_until)`,
		rev.TokenID, rev.RevokedAt.Unix(), keepUntilSeconds(rev.KeepUntil),
	)
	return err
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE keep_until <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// keepUntilSeconds rounds up so a record never becomes collectable before
// the instant it was asked to survive to.
func keepUntilSeconds(t time.Time) int64 {
	s := t.Unix()
	if t.Nanosecond() > 0 {
		s++
	}
	return s
}
