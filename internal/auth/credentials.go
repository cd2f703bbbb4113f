package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Admin is the single staff account allowed to use the dashboard and kiosk.
// PasswordHash (bcrypt) wins over Password when both are set.
type Admin struct {
	Email        string
	Password     string
	PasswordHash string
}

// Configured reports whether any login is possible.
func (a Admin) Configured() bool {
	return a.Email != "" && (a.Password != "" || a.PasswordHash != "")
}

// Verify checks an email/password pair against the configured admin.
func (a Admin) Verify(email, password string) bool {
	if !a.Configured() || password == "" {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(email), a.Email) {
		return false
	}
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.Password)) == 1
}
