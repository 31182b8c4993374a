// Package secret covers the two at-rest protections the splitter needs:
// one-way hashing of excluded bank identifiers and reversible encryption of
// configuration values.
package secret

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashIdentifier returns a salted one-way hash of a bank identifier.
// The output differs between calls for the same input; membership is tested
// with VerifyIdentifier, never by comparing hashes.
func HashIdentifier(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing identifier: %w", err)
	}
	return string(hash), nil
}

// VerifyIdentifier reports whether hash was produced from plaintext.
// A malformed hash verifies as false rather than erroring.
func VerifyIdentifier(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
