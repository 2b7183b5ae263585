package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/crucial707/groupchat/internal/auth"
	"github.com/crucial707/groupchat/internal/middleware"
	"github.com/crucial707/groupchat/internal/models"
)

var (
	testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	testKey  = "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"
)

var userCols = []string{"id", "username", "email", "password_hash", "status", "created_at"}

// hexKey matches a freshly generated token key.
type hexKey struct{}

func (hexKey) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && regexp.MustCompile(`^[0-9a-f]{40}$`).MatchString(s)
}

// bcryptOf matches a bcrypt hash of the given plaintext.
type bcryptOf string

func (p bcryptOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && s != string(p) && auth.CheckPassword(s, string(p))
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, user *models.User) *http.Request {
	p := &auth.Principal{User: user, Token: &models.AuthToken{Key: testKey, UserID: user.ID}}
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "alice", Email: "alice@example.com", Status: models.StatusActive, CreatedAt: testTime}
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
