package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	tokens map[string]*models.User
	err    error
	calls  int
}

func (f *fakeTokens) GetWithUser(ctx context.Context, key string) (*models.AuthToken, *models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	u, ok := f.tokens[key]
	if !ok {
		return nil, nil, repo.ErrNotFound
	}
	return &models.AuthToken{Key: key, UserID: u.ID}, u, nil
}

func TestAuthenticator_Anonymous(t *testing.T) {
	store := &fakeTokens{}
	a := NewAuthenticator(store)

	for _, h := range []string{"", "Bearer x"} {
		p, err := a.Authenticate(context.Background(), h)
		require.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.Zero(t, store.calls, "anonymous requests must not hit the store")
}

func TestAuthenticator_Resolves(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice", Status: models.StatusActive}
	a := NewAuthenticator(&fakeTokens{tokens: map[string]*models.User{"k1": alice}})

	p, err := a.Authenticate(context.Background(), "Token k1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, alice, p.User)
	assert.Equal(t, "k1", p.Token.Key)
}

func TestAuthenticator_Failures(t *testing.T) {
	disabled := &models.User{ID: 2, Username: "bob", Status: models.StatusDisabled}
	a := NewAuthenticator(&fakeTokens{tokens: map[string]*models.User{"k2": disabled}})

	_, err := a.Authenticate(context.Background(), "Token unknown")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, IsCredentialError(err))

	_, err = a.Authenticate(context.Background(), "Token k2")
	assert.ErrorIs(t, err, ErrInactiveUser)

	_, err = a.Authenticate(context.Background(), "Token")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestAuthenticator_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	a := NewAuthenticator(&fakeTokens{err: boom})

	_, err := a.Authenticate(context.Background(), "Token k1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsCredentialError(err))
}
