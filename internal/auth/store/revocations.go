//go:generate mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Revocations=Revocations"

package store

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

// Revocations is the key-existence store of revoked token ids. It must be
// safe for concurrent Exists and Insert calls.
type Revocations interface {
	Exists(ctx context.Context, tokenID string) (bool, error)

	// Insert records r. Inserting an id that is already present succeeds
	// and keeps the later of the two KeepUntil values.
	Insert(ctx context.Context, r domain.Revocation) error

	// DeleteExpired drops records whose KeepUntil is at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
