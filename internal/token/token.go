package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenLen is the number of random bytes in an opaque token.
const tokenLen = 32

// Generate creates a random opaque token for email verification and password
// reset links. The token itself carries no meaning; it is matched against the
// copy stored on the user document.
func Generate() (string, error) {
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
