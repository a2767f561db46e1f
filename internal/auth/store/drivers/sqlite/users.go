package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store"
)

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var (
		u           domain.User
		authorities string
		createdAt   int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, authorities, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &authorities, &createdAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Authorities = strings.Fields(authorities)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, authorities, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, strings.Join(u.Authorities, " "), u.CreatedAt.Unix(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %q", store.ErrAlreadyExists, u.Username)
	}
	return err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
