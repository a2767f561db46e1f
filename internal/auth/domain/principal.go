package domain

// PrincipalKind tags the variant held by a Principal.
type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalAccess
	PrincipalRefresh
)

// Principal is the identity attached to a request once its bearer token has
// been classified and verified. The zero value is anonymous.
type Principal struct {
	Kind  PrincipalKind
	Token Token
}

func Anonymous() Principal { return Principal{} }

// Authenticated wraps a verified token of the given kind.
func Authenticated(kind Kind, t Token) Principal {
	switch kind {
	case KindAccess:
		return Principal{Kind: PrincipalAccess, Token: t}
	case KindRefresh:
		return Principal{Kind: PrincipalRefresh, Token: t}
	default:
		return Anonymous()
	}
}

func (p Principal) IsAnonymous() bool { return p.Kind == PrincipalAnonymous }

// Subject returns the token subject, or "" for anonymous principals.
func (p Principal) Subject() string {
	if p.IsAnonymous() {
		return ""
	}
	return p.Token.Subject
}

func (p Principal) Authorities() []string {
	if p.IsAnonymous() {
		return nil
	}
	return p.Token.Authorities
}
