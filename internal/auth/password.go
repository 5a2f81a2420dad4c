package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 lands around 250ms per
// hash on current hardware — slow enough to hurt brute force, fast enough
// for a login.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification. The only
// password in this app is the shared dev-login password (GitHub OAuth is
// the real identity provider), but the hashing rules are the same ones a
// user password would get.
//
// The cost is a field rather than a constant so tests can drop it to the
// bcrypt minimum and not pay 250ms per case.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

func newPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// cost for use by tests in other packages. Not for production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext with bcrypt. The output embeds the salt and
// cost, so it is the only thing that needs storing.
//
// Passwords over 72 bytes are rejected: bcrypt would silently truncate
// them, and silent truncation is worse than an error.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext against a stored hash. bcrypt's comparison is
// constant-time, so this is safe against timing probes.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
