package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
)

func newTestRevocations(t *testing.T) (*miniredis.Miniredis, *Revocations, time.Time) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRevocations(client)
	r.now = func() time.Time { return now }
	return mr, r, now
}

func TestInsertAndExists(t *testing.T) {
	ctx := context.Background()
	mr, r, now := newTestRevocations(t)

	ok, err := r.Exists(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)

	rev := domain.Revocation{TokenID: "tok", RevokedAt: now, KeepUntil: now.Add(5 * time.Minute)}
	require.NoError(t, r.Insert(ctx, rev))
	require.NoError(t, r.Insert(ctx, rev))

	ok, err = r.Exists(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 5*time.Minute, mr.TTL("revoked:tok"))
	require.Len(t, mr.Keys(), 1)
}

func TestRecordsExpireAtKeepUntil(t *testing.T) {
	ctx := context.Background()
	mr, r, now := newTestRevocations(t)

	require.NoError(t, r.Insert(ctx, domain.Revocation{TokenID: "tok", RevokedAt: now, KeepUntil: now.Add(time.Minute)}))

	mr.FastForward(59 * time.Second)
	ok, err := r.Exists(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Second)
	ok, err = r.Exists(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsertNeverShortensRecord(t *testing.T) {
	ctx := context.Background()
	mr, r, now := newTestRevocations(t)

	require.NoError(t, r.Insert(ctx, domain.Revocation{TokenID: "fam", RevokedAt: now, KeepUntil: now.Add(time.Minute)}))
	require.NoError(t, r.Insert(ctx, domain.Revocation{TokenID: "fam", RevokedAt: now, KeepUntil: now.Add(time.Hour)}))
	require.Equal(t, time.Hour, mr.TTL("revoked:fam"))

	require.NoError(t, r.Insert(ctx, domain.Revocation{TokenID: "fam", RevokedAt: now, KeepUntil: now.Add(time.Second)}))
	require.Equal(t, time.Hour, mr.TTL("revoked:fam"))
}

func TestInsertAlreadyExpiredToken(t *testing.T) {
	ctx := context.Background()
	mr, r, now := newTestRevocations(t)

	require.NoError(t, r.Insert(ctx, domain.Revocation{TokenID: "old", RevokedAt: now, KeepUntil: now.Add(-time.Hour)}))
	require.Equal(t, time.Second, mr.TTL("revoked:old"))
}

func TestConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	_, r, now := newTestRevocations(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("tok-%d", i%10)
			errs <- r.Insert(ctx, domain.Revocation{TokenID: id, RevokedAt: now, KeepUntil: now.Add(time.Hour)})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for i := range 10 {
		ok, err := r.Exists(ctx, fmt.Sprintf("tok-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestDeleteExpiredIsNoop(t *testing.T) {
	n, err := (&Revocations{}).DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr(), time.Second)
	require.NoError(t, err)
	require.NoError(t, NewRevocations(client).Ping(context.Background()))
	require.NoError(t, client.Close())

	mr.Close()
	_, err = Connect(context.Background(), mr.Addr(), 300*time.Millisecond)
	require.Error(t, err)
}
