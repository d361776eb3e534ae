// Package permissions decides who may do what. Every predicate is a pure
// function of the request method, the requester and, for per-object checks,
// ownership; gin middleware and services both call into it.
package permissions

import (
	"fmt"
	"net/http"

	"reviewhub/internal/microservices/http-api/apperr"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", apperr.Validation("unknown role %q, expected one of user, moderator, admin", s)
	}
	return role, nil
}

// Requester is the identity a request runs under. The zero value is anonymous.
type Requester struct {
	Authenticated bool
	UserID        string
	Username      string
	Role          Role
	IsStaff       bool
}

// IsAdmin also honours the staff flag of operator accounts.
func (r Requester) IsAdmin() bool {
	return r.Authenticated && (r.Role == RoleAdmin || r.IsStaff)
}

func (r Requester) IsModerator() bool {
	return r.Authenticated && r.Role == RoleModerator
}

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func AdminOrReadOnly(method string, r Requester) bool {
	return IsSafeMethod(method) || r.IsAdmin()
}

func AdminOnly(r Requester) bool {
	return r.IsAdmin()
}

func Authenticated(r Requester) bool {
	return r.Authenticated
}

func AuthenticatedOrReadOnly(method string, r Requester) bool {
	return IsSafeMethod(method) || r.Authenticated
}

// AuthorOrModeratorOrReadOnly is the object-level rule for reviews and
// comments. Admin and staff accounts get no bypass here.
func AuthorOrModeratorOrReadOnly(method string, r Requester, isOwner bool) bool {
	if IsSafeMethod(method) {
		return true
	}
	if !r.Authenticated {
		return false
	}
	return isOwner || r.IsModerator()
}

// Enforce turns a failed check into ErrUnauthorized for anonymous callers and
// ErrForbidden for everyone else.
func Enforce(allowed bool, r Requester, action string) error {
	if allowed {
		return nil
	}
	if !r.Authenticated {
		return apperr.Unauthorized("authentication required to %s", action)
	}
	return fmt.Errorf("%s: %w", action, apperr.Forbidden("you do not have permission to %s", action))
}
