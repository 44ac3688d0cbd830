package services

import (
	"regexp"
	"strings"

	"github.com/bookstore/backend/internal/models"
)

// Client-facing validation messages
const (
	msgRequiredFields      = "username, email and password are required"
	msgRequiredProfile     = "username and email are required"
	msgInvalidEmail        = "invalid email format"
	msgPasswordTooShort    = "password must be at least 8 characters long"
	msgPasswordTooLong     = "password must be at most 72 bytes long"
	msgPasswordSpecialChar = "password must contain at least one special character"
	msgInvalidRole         = "role must be either user or admin"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	specialChars     = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// passwordViolations returns every password rule the candidate breaks
func passwordViolations(password string) []string {
	var errs []string
	if len([]rune(password)) < minPasswordLength {
		errs = append(errs, msgPasswordTooShort)
	}
	if len(password) > maxPasswordBytes {
		errs = append(errs, msgPasswordTooLong)
	}
	if !strings.ContainsAny(password, specialChars) {
		errs = append(errs, msgPasswordSpecialChar)
	}
	return errs
}

// validateCredentials collects every violated rule for a new account
func validateCredentials(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return models.NewValidationError([]string{msgRequiredFields})
	}

	var errs []string
	if !isValidEmail(email) {
		errs = append(errs, msgInvalidEmail)
	}
	errs = append(errs, passwordViolations(password)...)
	return models.NewValidationError(errs)
}

// validateIdentity checks the fields shared by profile and admin edits
func validateIdentity(username, email string) []string {
	if username == "" || email == "" {
		return []string{msgRequiredProfile}
	}
	if !isValidEmail(email) {
		return []string{msgInvalidEmail}
	}
	return nil
}
