package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crucial707/groupchat/internal/auth"
	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodKey = "0123456789abcdef0123456789abcdef01234567"

type stubTokens struct {
	user *models.User
	err  error
}

func (s stubTokens) GetWithUser(_ context.Context, key string) (*models.AuthToken, *models.User, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if key != goodKey {
		return nil, nil, repo.ErrNotFound
	}
	return &models.AuthToken{Key: key, UserID: s.user.ID}, s.user, nil
}

func protected(tokens auth.TokenLookup) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		json.NewEncoder(w).Encode(map[string]int{"user_id": id})
	})
	return TokenAuth(auth.NewAuthenticator(tokens))(RequireAuth(inner))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestTokenAuth_ValidToken(t *testing.T) {
	h := protected(stubTokens{user: &models.User{ID: 7, Status: models.StatusActive}})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Token "+goodKey)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":7}`, rr.Body.String())
}

func TestTokenAuth_Rejections(t *testing.T) {
	active := stubTokens{user: &models.User{ID: 1, Status: models.StatusActive}}
	disabled := stubTokens{user: &models.User{ID: 1, Status: models.StatusDisabled}}

	cases := []struct {
		name   string
		tokens auth.TokenLookup
		header string
		errMsg string
	}{
		{"missing header", active, "", "authentication credentials were not provided"},
		{"other scheme", active, "Bearer " + goodKey, "authentication credentials were not provided"},
		{"keyword only", active, "Token", auth.ErrNoCredentials.Error()},
		{"token with spaces", active, "Token abc def", auth.ErrTokenHasSpaces.Error()},
		{"unknown token", active, "Token ffffffffffffffffffffffffffffffffffffffff", "invalid token"},
		{"disabled user", disabled, "Token " + goodKey, "user inactive or disabled"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/messages", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			protected(tc.tokens).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Token", rr.Header().Get("WWW-Authenticate"))
			assert.Equal(t, tc.errMsg, decodeError(t, rr))
		})
	}
}

func TestTokenAuth_StoreFailureIs500(t *testing.T) {
	h := protected(stubTokens{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/messages", nil)
	req.Header.Set("Authorization", "Token "+goodKey)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, strings.Contains(rr.Body.String(), "connection refused"))
}

func TestTokenAuth_AnonymousPassesThrough(t *testing.T) {
	called := false
	h := TokenAuth(auth.NewAuthenticator(stubTokens{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := PrincipalFrom(r.Context())
		assert.False(t, ok)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.True(t, called)
}
