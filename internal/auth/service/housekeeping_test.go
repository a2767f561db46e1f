package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/internal/auth/store/mock"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHousekeepingSweepRemovesOnlyCollectable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for _, r := range []domain.Revocation{
		{TokenID: "dead", RevokedAt: testNow.Add(-2 * time.Hour), KeepUntil: testNow.Add(-time.Hour)},
		{TokenID: "boundary", RevokedAt: testNow.Add(-time.Hour), KeepUntil: testNow},
		{TokenID: "live", RevokedAt: testNow, KeepUntil: testNow.Add(time.Hour)},
	} {
		require.NoError(t, s.Revocations().Insert(ctx, r))
	}

	reg := prometheus.NewRegistry()
	h := NewHousekeepingService(s.Revocations(), slogx.Discard(), time.Minute)
	h.Now = fixedClock(testNow)
	h.Metrics = NewMetrics(reg, "tokengate")

	n, err := h.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Equal(t, 2.0, testutil.ToFloat64(h.Metrics.collected))

	for id, want := range map[string]bool{"dead": false, "boundary": false, "live": true} {
		ok, err := s.Revocations().Exists(ctx, id)
		require.NoError(t, err)
		require.Equal(t, want, ok, id)
	}
}

func TestHousekeepingLoop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	revs := mock.NewRevocations(ctrl)

	swept := make(chan struct{}, 1)
	revs.EXPECT().DeleteExpired(gomock.Any(), testNow).DoAndReturn(func(context.Context, time.Time) (int64, error) {
		select {
		case swept <- struct{}{}:
		default:
		}
		return 0, errors.New("locked")
	}).MinTimes(1)

	h := NewHousekeepingService(revs, slogx.Discard(), time.Hour)
	h.Now = fixedClock(testNow)
	h.Start()

	select {
	case <-swept:
	case <-time.After(5 * time.Second):
		t.Fatal("housekeeping did not sweep on start")
	}
	h.Stop()
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	t.Parallel()
	h := NewHousekeepingService(nil, slogx.Discard(), 0)
	require.Equal(t, 10*time.Minute, h.Interval)
}
