package swordv2

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/swordgate/internal/sword"
)

const (
	headerOnBehalfOf = "On-Behalf-Of"
	authRealm        = `Basic realm="SWORD"`

	// serverKey is where requireAuth leaves the per-request *sword.Server
	serverKey = "sword.server"
)

// requireAuth demands basic credentials and builds the request's sword.Server
// from them. The credentials themselves are judged by the router.
func (c *Controller) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		username, password, ok := ctx.Request().BasicAuth()
		if !ok {
			ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, authRealm)
			return ctx.NoContent(http.StatusUnauthorized)
		}

		auth := c.authenticator.BasicAuthenticate(username, password, ctx.Request().Header.Get(headerOnBehalfOf))
		ctx.Set(serverKey, c.newServer(ctx, auth))
		return next(ctx)
	}
}

func server(ctx echo.Context) *sword.Server {
	s, _ := ctx.Get(serverKey).(*sword.Server)
	return s
}
