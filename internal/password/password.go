package password

import "golang.org/x/crypto/bcrypt"

// cost matches the work factor the account data was originally hashed with.
const cost = 10

// Hash hashes a plaintext password with bcrypt. The salt is generated per
// call and embedded in the output.
func Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether plaintext matches the stored hash. A malformed
// stored hash verifies false, it never errors.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
