package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/groupchat/internal/auth"
	"github.com/crucial707/groupchat/internal/metrics"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type key string

const principalKey key = "principal"

// TokenAuth resolves the Authorization header into a principal stored in the
// request context. Anonymous requests pass through untouched; use RequireAuth
// to reject them. Bad credentials get a 401 with a Token challenge.
func TokenAuth(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if auth.IsCredentialError(err) {
					metrics.IncAuthFailures(failureReason(err))
					unauthorized(w, err.Error())
					return
				}
				slog.ErrorContext(r.Context(), "token lookup failed",
					"request_id", chimw.GetReqID(r.Context()),
					"error", err)
				writeError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if p != nil {
				noteUser(r.Context(), p.User.ID)
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that TokenAuth left anonymous.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			metrics.IncAuthFailures("anonymous")
			unauthorized(w, "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*auth.Principal)
	return p, ok && p != nil
}

// GetUserID returns the authenticated caller's user id.
func GetUserID(ctx context.Context) (int, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return 0, false
	}
	return p.User.ID, true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", auth.Challenge())
	writeError(w, message, http.StatusUnauthorized)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		return "no_credentials"
	case errors.Is(err, auth.ErrTokenHasSpaces):
		return "token_spaces"
	case errors.Is(err, auth.ErrInvalidCharacters):
		return "invalid_characters"
	case errors.Is(err, auth.ErrInactiveUser):
		return "inactive_user"
	default:
		return "invalid_token"
	}
}
