package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".chat_token"
)

// ErrNotLoggedIn is returned when no token has been saved yet.
var ErrNotLoggedIn = errors.New("not logged in: run `chat login` first")

// APIURL returns the base URL for the chat API.
// It can be overridden with the CHAT_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("CHAT_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the CLI keeps the token between runs: CHAT_TOKEN_FILE,
// or ~/.chat_token.
func TokenPath() string {
	if v := os.Getenv("CHAT_TOKEN_FILE"); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(dir, tokenFileName)
}

// SaveToken stores token readable only by the current user.
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

// LoadToken returns the saved token or ErrNotLoggedIn.
func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// ClearToken removes the saved token. A missing file is not an error.
func ClearToken() error {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
