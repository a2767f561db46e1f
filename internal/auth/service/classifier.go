package service

import (
	"log/slog"

	"github.com/aussiebroadwan/tokengate/internal/auth/domain"
	"github.com/aussiebroadwan/tokengate/pkg/httpx"
)

// Classification is the outcome of Classify. A zero Kind means the header
// carried nothing this service recognises.
type Classification struct {
	Kind  domain.Kind
	Token domain.Token
}

func (c Classification) Recognized() bool { return c.Kind != 0 }

// Classifier decides which kind of token an Authorization header carries.
type Classifier struct {
	Access  TokenCodec
	Refresh TokenCodec
	Logger  *slog.Logger
}

func NewClassifier(access, refresh TokenCodec, logger *slog.Logger) *Classifier {
	return &Classifier{Access: access, Refresh: refresh, Logger: logger}
}

// Classify never fails. Headers without the bearer scheme and strings
// neither codec accepts come back unrecognised.
func (c *Classifier) Classify(header string) Classification {
	raw, ok := httpx.BearerToken(header)
	if !ok {
		return Classification{}
	}

	t, err := c.Access.Decode(raw)
	if err == nil {
		return Classification{Kind: domain.KindAccess, Token: t}
	}
	accessErr := err

	t, err = c.Refresh.Decode(raw)
	if err == nil {
		return Classification{Kind: domain.KindRefresh, Token: t}
	}

	if c.Logger != nil {
		c.Logger.Debug("bearer token not recognised",
			slog.String("access_error", accessErr.Error()),
			slog.String("refresh_error", err.Error()),
		)
	}
	return Classification{}
}
