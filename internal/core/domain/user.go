package domain

import "errors"

// Claim names the pipeline reads from the bearer token.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrLockedOut = errors.New("user is locked out")
var ErrMissingSubject = errors.New("missing 'sub' claim")
var ErrInvalidPagination = errors.New("page and pageSize must be greater than or equal to 1")

// User models an application user. UserID is the stable external identifier
// carried in the token's sub claim; ID is assigned by the store and never
// settable by clients. IsRoot is fixed at creation time and survives updates.
type User struct {
	ID          int64  `json:"id"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	IsAdmin     bool   `json:"isAdmin"`
	IsRoot      bool   `json:"isRoot"`
	IsLockedOut bool   `json:"isLockedOut"`
}
