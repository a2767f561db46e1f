package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by each driver.
// Repositories hang off it so a transaction can hand out the same set.
type Store interface {
	Users() Users
	Revocations() Revocations

	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to an open transaction.
type Tx interface {
	Users() Users
	Revocations() Revocations
}

type Users interface {
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	CountUsers(ctx context.Context) (int64, error)
}
