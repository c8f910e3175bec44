package auth

import (
	"net/http"
)

// DefaultOwner owns the jobs of an unauthenticated deployment when no local owner is configured.
const DefaultOwner = "admin"

// NoneAuthenticator trusts every request and runs it as a single local owner.
type NoneAuthenticator struct {
	owner string
}

func NewNoneAuthenticator(owner string) (*NoneAuthenticator, error) {
	if owner == "" {
		owner = DefaultOwner
	}
	return &NoneAuthenticator{owner: owner}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewUserContext(r.Context(), User{Username: n.owner})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
