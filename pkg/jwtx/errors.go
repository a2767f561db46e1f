package jwtx

import "errors"

var (
	ErrMalformed     = errors.New("jwtx: malformed token")
	ErrUnknownKID    = errors.New("jwtx: unknown kid")
	ErrKeyType       = errors.New("jwtx: key does not match algorithm")
	ErrIssuer        = errors.New("jwtx: issuer mismatch")
	ErrWrongTokenUse = errors.New("jwtx: wrong token_use")
	ErrMissingClaim  = errors.New("jwtx: required claim missing")
	ErrUnsupported   = errors.New("jwtx: unsupported algorithm")
)
