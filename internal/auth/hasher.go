package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted one-way digest of the secret. Each call
// salts independently, so hashing the same secret twice yields different
// strings.
func HashPassword(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether the secret matches the stored hash. A
// mismatch is a boolean outcome, never an error.
func CheckPassword(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
