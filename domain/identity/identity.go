package identity

// Role values reported by the remote API.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Identity is the authenticated user as reported by the profile endpoint.
// Only the bearer token is ever persisted; the identity is re-derived from
// the server on every start-up, so a non-zero Identity always reflects the
// last successful profile fetch.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the identity carries the administrative role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
