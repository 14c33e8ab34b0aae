package services

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordRunes = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrWeakPassword           = errors.New("weak password")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong        = errors.New("password must be at most 72 bytes")
	ErrPasswordMissingClasses = errors.New("password needs an upper-case letter, a lower-case letter and a digit")
	ErrPasswordContainsEmail  = errors.New("password must not contain your email name")
)

type weakPasswordError struct {
	reason error
}

func (err weakPasswordError) Error() string {
	return ErrWeakPassword.Error() + ": " + err.reason.Error()
}

func (err weakPasswordError) Unwrap() []error {
	return []error{ErrWeakPassword, err.reason}
}

// CheckPassword applies the sign-up password rules. Errors match
// ErrWeakPassword and the rule that failed.
func CheckPassword(password string, email string) error {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return weakPasswordError{ErrPasswordTooShort}
	}
	if len(password) > maxPasswordBytes {
		return weakPasswordError{ErrPasswordTooLong}
	}

	var upper, lower, digit bool
	for _, char := range password {
		upper = upper || unicode.IsUpper(char)
		lower = lower || unicode.IsLower(char)
		digit = digit || unicode.IsDigit(char)
	}
	if !upper || !lower || !digit {
		return weakPasswordError{ErrPasswordMissingClasses}
	}

	local, _, _ := strings.Cut(email, "@")
	if len(local) >= 4 && strings.Contains(strings.ToLower(password), local) {
		return weakPasswordError{ErrPasswordContainsEmail}
	}
	return nil
}
