package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrWrongKind          = errors.New("wrong_token_kind")
	ErrMissingAuthority   = errors.New("missing_authority")
)
