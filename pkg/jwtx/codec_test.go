package jwtx_test

import (
	"crypto"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const issuer = "https://auth.test"

func newSigner(t *testing.T, kid string, gen func() ([]byte, error)) jwtx.Signer {
	t.Helper()
	pemKey, err := gen()
	require.NoError(t, err)
	key, err := cryptox.ParsePrivateKeyPEM(pemKey)
	require.NoError(t, err)
	s, err := jwtx.NewSigner(kid, key)
	require.NoError(t, err)
	return s
}

func newCodec(t *testing.T, use string, gen func() ([]byte, error)) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(use, issuer, newSigner(t, use+"-key", gen), jwtx.NewKeySet())
	require.NoError(t, err)
	return c
}

func sampleClaims(now time.Time) jwtx.Claims {
	return jwtx.NewClaims("", "", "0b8f7d2e-6a8f-4b9c-9d7e-1f2a3b4c5d6e", "j.jameson",
		[]string{"ROLE_USER", "ROLE_ADMIN"}, now, now.Add(5*time.Minute))
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for name, gen := range map[string]func() ([]byte, error){
		jwtx.AlgorithmEdDSA: cryptox.GenerateEd25519Key,
		jwtx.AlgorithmES256: cryptox.GenerateES256Key,
	} {
		t.Run(name, func(t *testing.T) {
			c := newCodec(t, jwtx.UseAccess, gen)

			raw, err := c.Encode(sampleClaims(now))
			require.NoError(t, err)
			require.Equal(t, 2, strings.Count(raw, "."))

			got, err := c.Decode(raw)
			require.NoError(t, err)
			require.Equal(t, jwtx.UseAccess, got.Use)
			require.Equal(t, issuer, got.Issuer)
			require.Equal(t, "j.jameson", got.Subject)
			require.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, got.Authorities)
			require.True(t, now.Equal(got.IssuedAtTime()))
			require.True(t, now.Add(5*time.Minute).Equal(got.ExpiresAtTime()))
		})
	}
}

func TestCodecDecodesExpiredTokens(t *testing.T) {
	c := newCodec(t, jwtx.UseRefresh, cryptox.GenerateES256Key)
	past := time.Now().Add(-48 * time.Hour).UTC()

	raw, err := c.Encode(sampleClaims(past))
	require.NoError(t, err)

	got, err := c.Decode(raw)
	require.NoError(t, err)
	require.True(t, got.ExpiresAtTime().Before(time.Now()))
}

func TestCodecRejectsOtherUse(t *testing.T) {
	// Same key material for both uses, so only token_use separates them.
	signer := newSigner(t, "shared", cryptox.GenerateEd25519Key)
	keys := jwtx.NewKeySet()
	access, err := jwtx.NewCodec(jwtx.UseAccess, issuer, signer, keys)
	require.NoError(t, err)
	refresh, err := jwtx.NewCodec(jwtx.UseRefresh, issuer, signer, keys)
	require.NoError(t, err)

	raw, err := refresh.Encode(sampleClaims(time.Now().UTC()))
	require.NoError(t, err)

	_, err = access.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrWrongTokenUse)
}

func TestCodecRejectsForeignKeys(t *testing.T) {
	a := newCodec(t, jwtx.UseAccess, cryptox.GenerateEd25519Key)
	b := newCodec(t, jwtx.UseAccess, cryptox.GenerateEd25519Key)

	raw, err := a.Encode(sampleClaims(time.Now().UTC()))
	require.NoError(t, err)

	// Same kid, different key: signature check must fail.
	_, err = b.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestCodecRejectsUnknownKID(t *testing.T) {
	a, err := jwtx.NewCodec(jwtx.UseAccess, issuer, newSigner(t, "kid-a", cryptox.GenerateEd25519Key), jwtx.NewKeySet())
	require.NoError(t, err)
	b, err := jwtx.NewCodec(jwtx.UseAccess, issuer, newSigner(t, "kid-b", cryptox.GenerateEd25519Key), jwtx.NewKeySet())
	require.NoError(t, err)

	raw, err := a.Encode(sampleClaims(time.Now().UTC()))
	require.NoError(t, err)

	_, err = b.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestCodecRejectsIssuerMismatch(t *testing.T) {
	signer := newSigner(t, "k", cryptox.GenerateEd25519Key)
	keys := jwtx.NewKeySet()
	ours, err := jwtx.NewCodec(jwtx.UseAccess, issuer, signer, keys)
	require.NoError(t, err)
	theirs, err := jwtx.NewCodec(jwtx.UseAccess, "https://elsewhere", signer, keys)
	require.NoError(t, err)

	raw, err := theirs.Encode(sampleClaims(time.Now().UTC()))
	require.NoError(t, err)

	_, err = ours.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestCodecRejectsGarbage(t *testing.T) {
	c := newCodec(t, jwtx.UseAccess, cryptox.GenerateEd25519Key)
	raw, err := c.Encode(sampleClaims(time.Now().UTC()))
	require.NoError(t, err)

	for name, in := range map[string]string{
		"empty":     "",
		"one part":  "abc",
		"tampered":  raw[:len(raw)-4] + "AAAA",
		"alg none":  "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ4In0.",
		"truncated": raw[:len(raw)/2],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(in)
			require.Error(t, err)
		})
	}
}

func TestCodecRequiresCoreClaims(t *testing.T) {
	c := newCodec(t, jwtx.UseAccess, cryptox.GenerateEd25519Key)
	claims := sampleClaims(time.Now().UTC())
	claims.ID = ""

	raw, err := c.Encode(claims)
	require.NoError(t, err)

	_, err = c.Decode(raw)
	require.ErrorIs(t, err, jwtx.ErrMissingClaim)
}

func TestNewSignerRejectsUnsupportedKeys(t *testing.T) {
	_, err := jwtx.NewSigner("x", crypto.Signer(nil))
	require.ErrorIs(t, err, jwtx.ErrUnsupported)
}
