// Package redis keeps revoked token ids in Redis. Each record expires on its
// own once the revoked token could no longer be used, so no sweeping is
// needed.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

const keyPrefix = "revoked"

// insertScript writes the record unless a longer lived one already exists,
// which keeps Insert idempotent while letting a later revocation of the
// same family extend the record.
var insertScript = goredis.NewScript(`
local want = tonumber(ARGV[2])
local ttl = redis.call('PTTL', KEYS[1])
if ttl == -2 or (ttl >= 0 and ttl < want) then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
end
return 1
`)

type Revocations struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewRevocations(client goredis.UniversalClient) *Revocations {
	return &Revocations{client: client, now: time.Now}
}

// Connect dials addr and retries the first PING with exponential backoff
// until timeout elapses.
func Connect(ctx context.Context, addr string, timeout time.Duration) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 250 * time.Millisecond
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = max(timeout/4, eb.InitialInterval)
	eb.MaxElapsedTime = timeout

	err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, backoff.WithContext(eb, ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}
	return client, nil
}

func key(tokenID string) string {
	return keyPrefix + ":" + tokenID
}

func (r *Revocations) Exists(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: exists: %w", err)
	}
	return n > 0, nil
}

func (r *Revocations) Insert(ctx context.Context, rev domain.Revocation) error {
	// A record for an already dead token still has to be visible briefly,
	// so the lifetime is never less than a second.
	ttl := max(rev.KeepUntil.Sub(r.now()), time.Second)

	err := insertScript.Run(ctx, r.client,
		[]string{key(rev.TokenID)},
		strconv.FormatInt(rev.RevokedAt.Unix(), 10),
		ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis: insert: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis drops records at their KeepUntil.
func (r *Revocations) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *Revocations) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
