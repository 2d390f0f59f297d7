package sword

import (
	"github.com/tphakala/swordgate/internal/logger"
)

// Auth is the caller's credential as received. Token is the router API key and
// is forwarded untouched; nothing here ever checks it.
type Auth struct {
	Username   string
	OnBehalfOf string
	Token      string
}

// String omits the token.
func (a Auth) String() string {
	if a.OnBehalfOf != "" {
		return a.Username + " on behalf of " + a.OnBehalfOf
	}
	return a.Username
}

// Authenticator turns request credentials into an Auth.
type Authenticator struct {
	log logger.Logger
}

// NewAuthenticator returns an Authenticator that logs through log.
func NewAuthenticator(log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Authenticator{log: log}
}

// BasicAuthenticate accepts any basic credentials; the router decides whether
// they are valid when the request is forwarded.
func (a *Authenticator) BasicAuthenticate(username, password, onBehalfOf string) Auth {
	a.log.Debug("basic auth credentials will be forwarded to the router, not checked here",
		logger.String("username", username))
	return Auth{Username: username, OnBehalfOf: onBehalfOf, Token: password}
}
