package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userplatform/user-api/internal/api/metrics"
	"github.com/userplatform/user-api/internal/core/domain"
	"github.com/userplatform/user-api/internal/core/ports"
)

// Enrich resolves the caller's user record from the token claims and attaches
// it to context under UserContextKey. Anonymous requests pass through
// untouched (route-level claim guards reject them where required).
// Authenticated requests without a usable sub claim are rejected with 401,
// locked-out users with 403. Store failures propagate to the central error
// handler.
func Enrich(service ports.UserService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return next(c)
			}

			start := time.Now()
			user, created, err := service.Enrich(c.Request().Context(), claims)
			metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
			if created {
				metrics.UsersCreatedTotal.Inc()
			}

			switch {
			case errors.Is(err, domain.ErrMissingSubject):
				metrics.RequestsRejectedTotal.WithLabelValues("missing_sub").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing 'sub' claim")
			case errors.Is(err, domain.ErrLockedOut):
				log.Warn().Str("user_id", claims[domain.ClaimSubject]).Msg("rejected locked out user")
				metrics.RequestsRejectedTotal.WithLabelValues("locked_out").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "User is locked out")
			case err != nil:
				return err
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}
