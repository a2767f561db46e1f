package jwtx_test

import (
	"encoding/json"
	"testing"

	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeySetPublishesSigners(t *testing.T) {
	ks := jwtx.NewKeySet()
	ed := newSigner(t, "ed", cryptox.GenerateEd25519Key)
	ec := newSigner(t, "ec", cryptox.GenerateES256Key)

	require.NoError(t, ks.AddSigner(ed))
	require.NoError(t, ks.AddSigner(ec))
	require.NoError(t, ks.AddSigner(ec))
	require.Equal(t, 2, ks.Len())

	jwks := ks.PublicJWKS()
	require.Len(t, jwks.Keys, 2)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "EC", jwks.Keys[1].Kty)
	require.Len(t, jwks.Keys[1].X, 43)
	require.Len(t, jwks.Keys[1].Y, 43)

	_, err := ks.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestJWKJSONRoundTrip(t *testing.T) {
	ec := newSigner(t, "ec", cryptox.GenerateES256Key)

	raw, err := json.Marshal(jwtx.JWKS{Keys: []jwtx.JWK{ec.PublicJWK()}})
	require.NoError(t, err)

	var back jwtx.JWKS
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, ec.PublicJWK(), back.Keys[0])

	_, err = back.Keys[0].PublicKey()
	require.NoError(t, err)
}

func TestJWKRejectsUnsupported(t *testing.T) {
	_, err := jwtx.JWK{Kty: "RSA"}.PublicKey()
	require.ErrorIs(t, err, jwtx.ErrUnsupported)
}
