// Package password wraps credential hashing and verification.
//
// Plaintext passwords never persist; callers store only the salted hash
// returned by Hash.
package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted one-way hash from plaintext. The salt is
// randomized per call, so repeated calls return different hashes that
// all verify against the same plaintext.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether candidate matches the given hash. A malformed
// hash verifies as false rather than erroring, so callers can treat
// "unknown account" and "wrong password" uniformly.
func Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
