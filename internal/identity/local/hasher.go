package local

import (
	"golang.org/x/crypto/bcrypt"

	"mindweek/internal/identity"
)

const (
	HashVersionBcrypt = "bcrypt"

	minPasswordLen = 6
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (hash string, version string, err error) {
	if len(password) < minPasswordLen {
		return "", "", identity.NewError(identity.ReasonWeakPassword, nil)
	}

	bytes, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", "", err
	}

	return string(bytes), HashVersionBcrypt, nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}
