package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash suitable for User.Password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// CheckPassword compares plain against stored. legacy is true when stored was
// plaintext, which older documents still contain.
func CheckPassword(stored, plain string) (ok, legacy bool) {
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	if stored == "" {
		return false, true
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1, true
}

// HashLegacyPasswords replaces plaintext passwords in doc with bcrypt hashes
// and returns how many were converted.
func HashLegacyPasswords(doc *models.Document) (int, error) {
	n := 0
	for i := range doc.Users {
		if doc.Users[i].Password == "" || IsHashed(doc.Users[i].Password) {
			continue
		}
		h, err := HashPassword(doc.Users[i].Password)
		if err != nil {
			return n, err
		}
		doc.Users[i].Password = h
		n++
	}
	return n, nil
}
