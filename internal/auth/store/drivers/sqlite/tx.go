package sqlite

import "github.com/aussiebroadwan/tokengate/internal/auth/store"

type txStore struct {
	q querier
}

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.q} }
func (t *txStore) Revocations() store.Revocations { return &revocationsRepo{q: t.q} }
