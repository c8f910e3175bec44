package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type tokenKeyType struct{}

var (
	tokenKey tokenKeyType
)

func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(tokenKey)
	if val == nil {
		return User{}, false
	}
	u, ok := val.(User)
	return u, ok
}

func MustHaveUser(ctx context.Context) User {
	user, found := UserFromContext(ctx)
	if !found {
		zap.S().Named("auth").Panic("failed to find user in context")
	}
	return user
}

func NewUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, tokenKey, u)
}

type User struct {
	Username     string
	Organization string
	Token        *jwt.Token
}

// Owner is the namespace of the pcap jobs submitted by the user.
func (u User) Owner() string {
	return u.Username
}
