package gatewaytest

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords for seeded accounts. MinCost
// keeps test runs fast.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the minimum bcrypt cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.MinCost}
}

// Hash generates a bcrypt hash of the given password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks if the provided password matches the hash.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
