package domain

import "time"

// User is a credential record. Authorities are plain capability names such
// as "ROLE_USER"; the grant marker is added when a refresh token is minted.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC string
	Authorities  []string
	CreatedAt    time.Time
}
