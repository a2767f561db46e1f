package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and parses tokens of a single use. Decode checks the
// signature, the issuer and the token_use claim. It deliberately leaves
// exp alone: deciding whether a token is still honourable belongs to the
// caller, which also needs to tell expiry apart from revocation.
type Codec struct {
	use    string
	issuer string
	signer Signer
	keys   *KeySet
	parser *jwt.Parser
}

// NewCodec builds a codec for use. The signer's public key is added to keys.
func NewCodec(use, issuer string, signer Signer, keys *KeySet) (*Codec, error) {
	if use != UseAccess && use != UseRefresh {
		return nil, fmt.Errorf("jwtx: unknown token use %q", use)
	}
	if err := keys.AddSigner(signer); err != nil {
		return nil, err
	}

	return &Codec{
		use:    use,
		issuer: issuer,
		signer: signer,
		keys:   keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signer.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func (c *Codec) Use() string { return c.use }

// Encode stamps the codec's use and issuer onto claims and signs them.
func (c *Codec) Encode(claims Claims) (string, error) {
	claims.Use = c.use
	claims.Issuer = c.issuer
	return c.signer.Sign(claims)
}

func (c *Codec) Decode(raw string) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(raw, &claims, c.keyFunc)
	if err != nil {
		if errors.Is(err, ErrUnknownKID) || errors.Is(err, ErrKeyType) {
			return Claims{}, err
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Use != c.use {
		return Claims{}, ErrWrongTokenUse
	}
	if claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	if claims.ID == "" || claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Claims{}, ErrMissingClaim
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	key, err := c.keys.Get(kid)
	if err != nil {
		return nil, err
	}

	switch key.(type) {
	case ed25519.PublicKey:
		if t.Method.Alg() != AlgorithmEdDSA {
			return nil, ErrKeyType
		}
	case *ecdsa.PublicKey:
		if t.Method.Alg() != AlgorithmES256 {
			return nil, ErrKeyType
		}
	default:
		return nil, ErrKeyType
	}
	return key, nil
}
