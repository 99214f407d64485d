package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("missing caller identity")
	ErrForbidden       = errors.New("access forbidden")
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the resolved caller attached to every inbound operation.
type Identity struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// IsAdmin reports whether the caller may see soft-deleted products.
func (i Identity) IsAdmin() bool {
	return HasRequiredRole(i.Roles, []string{RoleAdmin})
}

// UserSummary is the lightweight projection of a user owned by the user
// service. It lives only for the duration of one response.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
