package auth

import (
	"fmt"
	"net/http"

	"github.com/kubev2v/pcap-query/internal/config"
	"go.uber.org/zap"
)

// Authenticator resolves the owner of the pcap jobs a request acts on and stores it in the request context.
type Authenticator interface {
	Authenticator(next http.Handler) http.Handler
}

const (
	RHSSOAuthentication string = "rhsso"
	// NoneAuthentication runs every request as the configured local owner.
	NoneAuthentication string = "none"
)

func NewAuthenticator(authConfig config.Auth) (Authenticator, error) {
	logger := zap.S().Named("auth")

	switch authConfig.AuthenticationType {
	case RHSSOAuthentication:
		logger.Infow("job owners are read from sso tokens", "jwk_url", authConfig.JwkCertURL)
		return NewRHSSOAuthenticator(authConfig.JwkCertURL)
	case NoneAuthentication, "":
		logger.Infow("authentication disabled, jobs belong to the local owner", "owner", authConfig.LocalOwner)
		return NewNoneAuthenticator(authConfig.LocalOwner)
	default:
		return nil, fmt.Errorf("unknown authentication type %q", authConfig.AuthenticationType)
	}
}
