package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userplatform/user-api/internal/api/middleware"
	"github.com/userplatform/user-api/internal/core/domain"
)

// currentUser extracts the record attached by the enrichment filter. A
// missing record means the route was registered without the filter, which is
// a wiring bug: surface it as a 500 rather than guessing at an identity.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserContextKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "user record not found in request context")
	}
	return user, nil
}
