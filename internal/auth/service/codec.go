package service

import (
	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/pkg/jwtx"
)

// TokenCodec turns a Token into an opaque bearer string and back. There is
// one codec per token kind and a codec must refuse strings produced by the
// other kind's codec. Decode does not judge expiry.
type TokenCodec interface {
	Encode(t domain.Token) (string, error)
	Decode(raw string) (domain.Token, error)
}

// JWTCodec adapts a jwtx.Codec to TokenCodec.
type JWTCodec struct {
	codec *jwtx.Codec
}

func NewJWTCodec(c *jwtx.Codec) *JWTCodec {
	return &JWTCodec{codec: c}
}

func (c *JWTCodec) Encode(t domain.Token) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return c.codec.Encode(jwtx.NewClaims(c.codec.Use(), "", t.ID, t.Subject, t.Authorities, t.CreatedAt, t.ExpiresAt))
}

func (c *JWTCodec) Decode(raw string) (domain.Token, error) {
	claims, err := c.codec.Decode(raw)
	if err != nil {
		return domain.Token{}, err
	}

	authorities := claims.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return domain.Token{
		ID:          claims.ID,
		Subject:     claims.Subject,
		Authorities: authorities,
		CreatedAt:   claims.IssuedAtTime(),
		ExpiresAt:   claims.ExpiresAtTime(),
	}, nil
}
