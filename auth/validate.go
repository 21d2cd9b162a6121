package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minTextLen       = 3
	maxTextLen       = 50
	minPasswordLen   = 8
	maxPasswordLen   = 50
	maxPasswordBytes = 72 // bcrypt limit
)

// ValidationError reports a single invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d characters", min, max)}
	}
	return nil
}

func validateOptional(field string, value *string) error {
	if value == nil {
		return nil
	}
	return validateLength(field, *value, minTextLen, maxTextLen)
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "is not a valid email address"}
	}
	return nil
}

func validatePassword(field, password string) error {
	if password == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if err := validateLength(field, password, minPasswordLen, maxPasswordLen); err != nil {
		return err
	}
	if len(password) > maxPasswordBytes {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d bytes", maxPasswordBytes)}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
