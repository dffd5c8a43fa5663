package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HelloHandler serves the authenticated demo endpoint.
type HelloHandler struct{}

func NewHelloHandler() *HelloHandler {
	return &HelloHandler{}
}

// Hello handles GET /hello.
//
// @Summary      Greet the calling user
// @Tags         hello
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string  "Hello, {userName}! (UserID: {userId})"
// @Failure      401  {object}  map[string]string
// @Router       /hello [get]
func (h *HelloHandler) Hello(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, fmt.Sprintf("Hello, %s! (UserID: %s)", user.UserName, user.UserID))
}
