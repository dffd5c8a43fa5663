package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/userplatform/user-api/internal/core/domain"
	"github.com/userplatform/user-api/internal/core/ports"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// UserHandler handles HTTP requests for user-management operations. All
// routes run behind the claim guard and enrichment filter; every method can
// rely on a resolved, non-locked-out caller being present in context.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// --- Request / Response types ---

type createUserRequest struct {
	UserID      string `json:"userId" validate:"required"`
	UserName    string `json:"userName" validate:"required"`
	IsAdmin     bool   `json:"isAdmin"`
	IsRoot      bool   `json:"isRoot"`
	IsLockedOut bool   `json:"isLockedOut"`
}

type updateUserRequest struct {
	UserName    string `json:"userName" validate:"required"`
	IsAdmin     bool   `json:"isAdmin"`
	IsRoot      bool   `json:"isRoot"`
	IsLockedOut bool   `json:"isLockedOut"`
}

type listUsersResponse struct {
	Users    []*domain.User `json:"users"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// Me handles GET /api/user/me.
//
// @Summary      Get the calling user's record
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get handles GET /api/user/:userId.
//
// @Summary      Get a user by external id (admin only)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "External user id"
// @Success      200     {object}  domain.User
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/user/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Request().Context(), caller, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List handles GET /api/user?page=&pageSize=.
//
// @Summary      List users, paged (admin only)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "1-based page number"      default(1)
// @Param        pageSize  query     int  false  "Records per page"         default(20)
// @Success      200       {object}  listUsersResponse
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /api/user [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil {
		return err
	}

	users, total, err := h.service.ListUsers(c.Request().Context(), caller, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Users:    users,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Create handles POST /api/user.
//
// @Summary      Create a user (admin only)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User record, internal id excluded"
// @Success      201   {object}  domain.User
// @Header       201   {string}  Location  "api/user/{userId}"
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/user [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	created, err := h.service.CreateUser(c.Request().Context(), caller, &domain.User{
		UserID:      req.UserID,
		UserName:    req.UserName,
		IsAdmin:     req.IsAdmin,
		IsRoot:      req.IsRoot,
		IsLockedOut: req.IsLockedOut,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/user/"+created.UserID)
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/user/:userId. The stored isRoot value is preserved
// regardless of the payload.
//
// @Summary      Update a user (admin only)
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        userId  path  string             true  "External user id"
// @Param        body    body  updateUserRequest  true  "Updated fields (isRoot is ignored)"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/user/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.service.UpdateUser(c.Request().Context(), caller, c.Param("userId"), &domain.User{
		UserName:    req.UserName,
		IsAdmin:     req.IsAdmin,
		IsRoot:      req.IsRoot,
		IsLockedOut: req.IsLockedOut,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /api/user/:userId.
//
// @Summary      Delete a user (admin only)
// @Tags         users
// @Security     BearerAuth
// @Param        userId  path  string  true  "External user id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/user/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), caller, c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// queryInt parses an integer query parameter, applying fallback when absent.
// A present but non-numeric value is a 400: it is a malformed request, not a
// request for the default.
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return n, nil
}
