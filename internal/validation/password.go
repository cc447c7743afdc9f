// Package validation provides input validation utilities
package validation

import (
	"errors"
	"regexp"
	"unicode"
)

var (
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	passwordDigit    = regexp.MustCompile(`[0-9]`)
	passwordSpecial  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	errPasswordShort = errors.New("password must be at least 12 characters long")
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errPasswordShort
	}
	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !passwordDigit.MatchString(password) {
		return errors.New("password must contain at least one digit")
	}
	if !passwordSpecial.MatchString(password) {
		return errors.New("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateUsername checks if a username meets requirements.
// Usernames appear in profile URLs, so only URL-safe characters are allowed.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 150 {
		return errors.New("username must not exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return errors.New("username cannot start or end with underscore or hyphen")
	}
	if _, reserved := reservedPathSegments[username]; reserved {
		return errors.New("username is reserved")
	}
	return nil
}
