package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://tokengate.test"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newJWTCodec(t *testing.T, use string, gen func() ([]byte, error)) *JWTCodec {
	t.Helper()
	pemKey, err := gen()
	require.NoError(t, err)
	key, err := cryptox.ParsePrivateKeyPEM(pemKey)
	require.NoError(t, err)
	signer, err := jwtx.NewSigner(use+"-test", key)
	require.NoError(t, err)
	c, err := jwtx.NewCodec(use, testIssuer, signer, jwtx.NewKeySet())
	require.NoError(t, err)
	return NewJWTCodec(c)
}

// newCodecs returns an EdDSA access codec and an ES256 refresh codec.
func newCodecs(t *testing.T) (access, refresh *JWTCodec) {
	t.Helper()
	return newJWTCodec(t, jwtx.UseAccess, cryptox.GenerateEd25519Key),
		newJWTCodec(t, jwtx.UseRefresh, cryptox.GenerateES256Key)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fastHasher keeps argon2 cheap in tests.
func fastHasher() cryptox.Argon2 {
	return cryptox.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 16}
}
