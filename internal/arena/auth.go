package arena

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashToken creates a bcrypt hash of an admin bearer token, suitable for
// arena.admin_token_hash.
//
// Precondition: token must be non-empty and at most 72 bytes.
// Postcondition: Returns a bcrypt hash string.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("hashing token: %w", ErrInvalidRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}

// CheckToken compares a bearer token against a bcrypt hash.
//
// Postcondition: Returns false when either argument is empty.
func CheckToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
