package services

import (
	"errors"
	"net/mail"
	"strings"
)

// Addresses are also forwarded to the fulfillment API as customer emails, so
// they are held to what a mail transport will accept.
const maxEmailLength = 254

var ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")

// Credentials is a sign-up or log-in form after normalisation. Passwords keep
// their exact bytes.
type Credentials struct {
	Email    string
	Password string
}

// NormalizeEmail lowercases a bare address and returns "" for anything that
// is not one: display-name forms, missing or dotless domains, oversize input.
func NormalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return ""
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ""
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(strings.Trim(domain, "."), ".") {
		return ""
	}
	return email
}

func ParseCredentials(emailRaw string, password string) (Credentials, error) {
	email := NormalizeEmail(emailRaw)
	if email == "" || strings.TrimSpace(password) == "" {
		return Credentials{}, ErrAuthCredentialsInvalid
	}
	return Credentials{Email: email, Password: password}, nil
}
