// Package auth implements the credential service: salted password hashing,
// signed bearer tokens with expiry, and the account registration/login flow.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted one-way bcrypt hash of the plaintext.
// The plaintext is never stored.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
