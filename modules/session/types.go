package session

import (
	"github.com/example/shopsphere-client/domain/identity"
)

// LoginRequest asks the session store to authenticate.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the identity the store constructed on success.
type LoginResponse struct {
	Identity identity.Identity `json:"identity"`
}

// RegisterRequest asks the store to create an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse acknowledges a registration. Registration never changes
// session state, so there is nothing to carry.
type RegisterResponse struct{}

// LogoutRequest asks the store to clear the session.
type LogoutRequest struct{}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct{}

// CurrentRequest asks for the session snapshot.
type CurrentRequest struct{}

// CurrentResponse reports the session state.
type CurrentResponse struct {
	Authenticated bool              `json:"authenticated"`
	Identity      identity.Identity `json:"identity"`
}
