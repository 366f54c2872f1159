package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new hashes. It matches
// the cost of the hashes shipped in the default directory.
const DefaultCost = 10

// dummy bcrypt comparisons for unknown usernames run against this hash
// so that the login path costs the same whether or not the user exists.
const unknownUserHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifyPassword reports whether secret matches storedHash. A stored
// hash that bcrypt cannot parse counts as a mismatch, it never escapes
// as an error.
func VerifyPassword(secret, storedHash string) bool {
	return CheckPassword(secret, storedHash) == nil
}

// CheckPassword is VerifyPassword with the underlying bcrypt error
// exposed, so callers can tell a plain mismatch from a malformed stored
// hash. Both must be treated as a failed verification.
func CheckPassword(secret, storedHash string) error {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret))
}

// HashPassword derives a bcrypt hash for secret with the given cost,
// suitable for a users file entry.
func HashPassword(secret string, cost int) (string, error) {
	buf, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
