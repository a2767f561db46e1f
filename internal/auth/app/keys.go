package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/tokengate/pkg/cryptox"
	"github.com/aussiebroadwan/tokengate/pkg/idx"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
)

// Keys holds one codec per token kind. Each kind has its own KeySet so a
// refresh key can never verify an access token; only AccessKeys is
// published over JWKS.
type Keys struct {
	Access      *jwtx.Codec
	Refresh     *jwtx.Codec
	AccessKeys  *jwtx.KeySet
	RefreshKeys *jwtx.KeySet
}

// InitAuthKeys loads or generates the signing keys.
//
// Key sources:
//   - AUTH_ACCESS_KEY_FILE / AUTH_REFRESH_KEY_FILE: a PKCS#8 PEM private key.
//     The key type must match the configured algorithm. Tokens survive
//     restarts.
//   - unset: a key is generated on startup and kept in memory only. Every
//     token issued before a restart stops verifying.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	k := &Keys{AccessKeys: jwtx.NewKeySet(), RefreshKeys: jwtx.NewKeySet()}

	var err error
	k.Access, err = loadCodec(jwtx.UseAccess, cfg.AccessAlgorithm, cfg.AccessKeyFile, cfg.Issuer, k.AccessKeys, logger)
	if err != nil {
		return nil, err
	}
	k.Refresh, err = loadCodec(jwtx.UseRefresh, cfg.RefreshAlgorithm, cfg.RefreshKeyFile, cfg.Issuer, k.RefreshKeys, logger)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func loadCodec(use, alg, path, issuer string, keys *jwtx.KeySet, logger *slog.Logger) (*jwtx.Codec, error) {
	pemKey, kid, err := keyMaterial(alg, path)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", use, err)
	}

	priv, err := cryptox.ParsePrivateKeyPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", use, err)
	}
	signer, err := jwtx.NewSigner(kid, priv)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", use, err)
	}
	if signer.Alg() != alg {
		return nil, fmt.Errorf("%s key: %s holds a %s key, want %s", use, path, signer.Alg(), alg)
	}

	codec, err := jwtx.NewCodec(use, issuer, signer, keys)
	if err != nil {
		return nil, fmt.Errorf("%s key: %w", use, err)
	}

	if path == "" {
		logger.Warn("generated ephemeral signing key; tokens will not survive a restart",
			"use", use, "algorithm", alg, "kid", kid)
	} else {
		logger.Info("loaded signing key", "use", use, "algorithm", alg, "kid", kid, "path", path)
	}
	return codec, nil
}

// keyMaterial returns the PEM key and its kid. File keys get a kid derived
// from their content so it is stable across restarts.
func keyMaterial(alg, path string) ([]byte, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		sum := sha256.Sum256(data)
		return data, hex.EncodeToString(sum[:8]), nil
	}

	var (
		data []byte
		err  error
	)
	switch alg {
	case jwtx.AlgorithmEdDSA:
		data, err = cryptox.GenerateEd25519Key()
	case jwtx.AlgorithmES256:
		data, err = cryptox.GenerateES256Key()
	default:
		return nil, "", fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidConfig, alg)
	}
	if err != nil {
		return nil, "", err
	}
	return data, idx.New().String(), nil
}
