// Package credentials handles one-way hashing and verification of account
// secrets. Plaintext secrets never leave this package in any form: they are
// not logged, not persisted and not returned.
package credentials

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/microblog-go/apperror"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Hasher produces and verifies salted bcrypt digests. The cost factor is
// explicit configuration, injected at construction.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces a salted, irreversible digest of the secret.
func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", apperror.NewInternalError("failed to hash password", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. It returns false for any
// malformed digest rather than an error, so callers cannot distinguish a
// corrupt digest from a wrong password. bcrypt's comparison is constant-time
// with respect to the secret.
func (h *Hasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// ValidateStrength enforces the password policy: at least MinPasswordLength
// characters, with at least one uppercase letter, one lowercase letter, one
// digit and one non-alphanumeric character. The policy runs before any
// hashing or storage mutation.
func ValidateStrength(password string) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	if len(password) < MinPasswordLength || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return apperror.NewValidationError(
			"Password must be at least 8 characters long and include an uppercase letter, a lowercase letter, a digit, and a special character.",
			nil,
		)
	}
	return nil
}
