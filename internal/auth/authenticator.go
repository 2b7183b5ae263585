package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInactiveUser = errors.New("user inactive or disabled")
)

// TokenLookup resolves a key to its token and owner. *repo.TokenRepo satisfies it.
type TokenLookup interface {
	GetWithUser(ctx context.Context, key string) (*models.AuthToken, *models.User, error)
}

// Principal is the authenticated caller.
type Principal struct {
	User  *models.User
	Token *models.AuthToken
}

type Authenticator struct {
	Tokens TokenLookup
}

func NewAuthenticator(tokens TokenLookup) *Authenticator {
	return &Authenticator{Tokens: tokens}
}

// Authenticate resolves an Authorization header. It returns (nil, nil) for
// anonymous requests. Header and credential problems are returned as the
// package's sentinel errors; anything else is a store failure.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	key, ok, err := ParseHeader(header)
	if err != nil || !ok {
		return nil, err
	}

	token, user, err := a.Tokens.GetWithUser(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrInactiveUser
	}

	return &Principal{User: user, Token: token}, nil
}

// IsCredentialError reports whether err means the client sent bad credentials
// (as opposed to the store failing).
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrTokenHasSpaces) ||
		errors.Is(err, ErrInvalidCharacters) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInactiveUser)
}
