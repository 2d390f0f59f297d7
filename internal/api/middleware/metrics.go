package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/swordgate/internal/observability/metrics"
)

// unmatchedRoute labels requests no route matched, so scanners cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// NewHTTPMetrics records request count, latency and response size per route template.
// A nil recorder disables the middleware.
func NewHTTPMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m == nil {
			return next
		}
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				// the error handler has not written the response yet
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			route := c.Path()
			if route == "" || strings.HasSuffix(route, "/*") {
				route = unmatchedRoute
			}

			m.RecordHTTPRequest(c.Request().Method, route, status, time.Since(start), c.Response().Size)
			return err
		}
	}
}
