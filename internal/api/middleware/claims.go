package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userplatform/user-api/internal/api/metrics"
)

// HasClaim gates a route on the presence of a named claim, optionally
// requiring an exact value. Anonymous callers, callers missing the claim, and
// callers carrying the claim with a different value are all rejected with 401.
// The guard runs before the enrichment filter's business logic and never
// touches the user store.
func HasClaim(claimType string, claimValue ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				metrics.RequestsRejectedTotal.WithLabelValues("missing_claim").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			value, present := claims[claimType]
			if !present {
				metrics.RequestsRejectedTotal.WithLabelValues("missing_claim").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing required claim: "+claimType)
			}
			if len(claimValue) > 0 && value != claimValue[0] {
				metrics.RequestsRejectedTotal.WithLabelValues("missing_claim").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing required claim: "+claimType)
			}

			return next(c)
		}
	}
}
