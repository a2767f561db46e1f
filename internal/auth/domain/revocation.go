package domain

import "time"

// Revocation marks a token id as no longer honourable. KeepUntil is the
// latest expiry of any token carrying that id; past that instant every
// such token is unusable anyway and the record may be dropped.
type Revocation struct {
	TokenID   string
	RevokedAt time.Time
	KeepUntil time.Time
}

func (r Revocation) Collectable(now time.Time) bool {
	return !now.Before(r.KeepUntil)
}
