// Package auth implements the opaque token scheme: parsing the Authorization
// header, resolving keys to principals, generating keys and hashing passwords.
package auth

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keyword is the Authorization scheme, matched case-insensitively.
const Keyword = "Token"

var (
	ErrNoCredentials     = errors.New("invalid token header: no credentials provided")
	ErrTokenHasSpaces    = errors.New("invalid token header: token must not contain spaces")
	ErrInvalidCharacters = errors.New("invalid token header: token must not contain invalid characters")
)

// Challenge is the WWW-Authenticate value sent with 401 responses.
func Challenge() string {
	return Keyword
}

// ParseHeader extracts the token key from an Authorization header value.
// ok is false (with a nil error) when the header is empty or names another
// scheme; such requests are anonymous rather than failed.
func ParseHeader(header string) (key string, ok bool, err error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], Keyword) {
		return "", false, nil
	}

	switch {
	case len(parts) == 1:
		return "", false, ErrNoCredentials
	case len(parts) > 2:
		return "", false, ErrTokenHasSpaces
	}

	key = parts[1]
	if !utf8.ValidString(key) || strings.IndexFunc(key, unicode.IsControl) >= 0 {
		return "", false, ErrInvalidCharacters
	}
	return key, true, nil
}
