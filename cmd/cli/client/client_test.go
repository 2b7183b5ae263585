package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"validation failed","fields":{"username":"username already exists","email":"enter a valid email address"}}`))
	}))
	defer srv.Close()
	t.Setenv("CHAT_API_URL", srv.URL+"/")

	err := Do("POST", "/auth/register/", "", map[string]string{"username": "alice"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "status 400: validation failed (email: enter a valid email address; username: username already exists)", err.Error())
}

func TestDo_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("CHAT_API_URL", srv.URL)

	err := Do("GET", "/messages/", "tok", nil, nil)
	assert.EqualError(t, err, "status 502: upstream down")
}

func TestDo_DecodesAndSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Write([]byte(`{"id":7,"username":"alice"}`))
	}))
	defer srv.Close()
	t.Setenv("CHAT_API_URL", srv.URL)

	var out struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, Do("GET", "/profile/", "abc", nil, &out))
	assert.Equal(t, 7, out.ID)
	assert.Equal(t, "alice", out.Username)
}
