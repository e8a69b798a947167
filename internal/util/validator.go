package util

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims an email address. Email is the unique
// account key, so every lookup and write must go through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks basic address shape.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 254 {
		return fmt.Errorf("email too long")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// ValidatePassword checks length bounds. bcrypt silently truncates past 72
// bytes, hence the upper bound.
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 {
		return fmt.Errorf("password too short, min 8 characters")
	}
	if len(pwd) > 72 {
		return fmt.Errorf("password too long, max 72 characters")
	}
	return nil
}

// ValidateFormat checks the reading format sent with a checkout request.
func ValidateFormat(format string) error {
	switch format {
	case "web", "pdf", "epub", "ios":
		return nil
	}
	return fmt.Errorf("unknown reading format: %q", format)
}
