package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func sampleTokens(t *testing.T) (access, refresh domain.Token) {
	t.Helper()
	refresh, err := RefreshTokenFactory{Now: fixedClock(testNow)}.
		Mint(domain.User{Username: "j.jameson", Authorities: []string{"ROLE_USER"}})
	require.NoError(t, err)
	access, err = AccessTokenFactory{Now: fixedClock(testNow)}.FromRefresh(refresh)
	require.NoError(t, err)
	return access, refresh
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	accessCodec, refreshCodec := newCodecs(t)
	access, refresh := sampleTokens(t)

	empty, err := AccessTokenFactory{Now: fixedClock(testNow)}.Mint(nil, "anon", "x")
	require.NoError(t, err)

	cases := []struct {
		name  string
		codec TokenCodec
		token domain.Token
	}{
		{"access", accessCodec, access},
		{"access without authorities", accessCodec, empty},
		{"refresh", refreshCodec, refresh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.codec.Encode(tc.token)
			require.NoError(t, err)

			got, err := tc.codec.Decode(raw)
			require.NoError(t, err)
			require.Equal(t, tc.token, got)
		})
	}
}

func TestCodecNilAuthoritiesDecodeEmpty(t *testing.T) {
	t.Parallel()
	accessCodec, _ := newCodecs(t)

	minted, err := mint("family-1", "anon", nil, testNow, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, minted.Authorities)

	raw, err := accessCodec.Encode(minted)
	require.NoError(t, err)
	got, err := accessCodec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, minted, got)

	handBuilt := minted
	handBuilt.Authorities = nil
	raw, err = accessCodec.Encode(handBuilt)
	require.NoError(t, err)
	got, err = accessCodec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, []string{}, got.Authorities)
}

func TestCodecKeepsExpiredTokens(t *testing.T) {
	t.Parallel()

	accessCodec, _ := newCodecs(t)
	old, err := AccessTokenFactory{Now: fixedClock(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))}.Mint(nil, "s", "id")
	require.NoError(t, err)

	raw, err := accessCodec.Encode(old)
	require.NoError(t, err)
	got, err := accessCodec.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, old, got)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	accessCodec, refreshCodec := newCodecs(t)
	c := NewClassifier(accessCodec, refreshCodec, slogx.Discard())

	access, refresh := sampleTokens(t)
	rawAccess, err := accessCodec.Encode(access)
	require.NoError(t, err)
	rawRefresh, err := refreshCodec.Encode(refresh)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   domain.Kind
	}{
		{"access token", "Bearer " + rawAccess, domain.KindAccess},
		{"refresh token", "Bearer " + rawRefresh, domain.KindRefresh},
		{"empty header", "", 0},
		{"missing scheme", rawAccess, 0},
		{"lowercase scheme", "bearer " + rawAccess, 0},
		{"basic scheme", "Basic ai5qYW1lc29uOnBhc3N3b3Jk", 0},
		{"empty bearer", "Bearer ", 0},
		{"garbage", "Bearer not-a-token", 0},
		{"tampered access", "Bearer " + rawAccess[:len(rawAccess)-2] + "xx", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.header)
			require.Equal(t, tt.want, got.Kind)
			require.Equal(t, tt.want != 0, got.Recognized())
		})
	}

	t.Run("decoded token is carried", func(t *testing.T) {
		got := c.Classify("Bearer " + rawRefresh)
		require.Equal(t, refresh, got.Token)
	})
}

func TestClassifyNeverCrossesKinds(t *testing.T) {
	t.Parallel()

	accessCodec, refreshCodec := newCodecs(t)
	c := NewClassifier(accessCodec, refreshCodec, nil)

	for i := range 20 {
		subject := fmt.Sprintf("user-%d", i)
		refresh, err := RefreshTokenFactory{Now: fixedClock(testNow.Add(time.Duration(i) * time.Minute))}.
			Mint(domain.User{Username: subject, Authorities: []string{fmt.Sprintf("cap-%d", i)}})
		require.NoError(t, err)
		access, err := AccessTokenFactory{}.FromRefresh(refresh)
		require.NoError(t, err)

		rawAccess, err := accessCodec.Encode(access)
		require.NoError(t, err)
		rawRefresh, err := refreshCodec.Encode(refresh)
		require.NoError(t, err)

		require.Equal(t, domain.KindAccess, c.Classify("Bearer "+rawAccess).Kind)
		require.Equal(t, domain.KindRefresh, c.Classify("Bearer "+rawRefresh).Kind)

		_, err = accessCodec.Decode(rawRefresh)
		require.Error(t, err)
		_, err = refreshCodec.Decode(rawAccess)
		require.Error(t, err)
	}
}
