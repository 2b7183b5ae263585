package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/groupchat/internal/auth"
	"github.com/crucial707/groupchat/internal/db"
	"github.com/crucial707/groupchat/internal/metrics"
	"github.com/crucial707/groupchat/internal/middleware"
	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	DB     *sql.DB
	Users  *repo.UserRepo
	Tokens *repo.TokenRepo
	// Events is optional; when set, register/login/logout are recorded.
	Events *repo.EventRepo
}

// userSummary is the user object embedded in login responses.
type userSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=3,max=150"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	fields := validationFields(input)
	if fields == nil {
		fields = make(map[string]string)
	}
	if err := checkUnique(r.Context(), h.Users, fields, &input.Username, &input.Email, 0); err != nil {
		slog.ErrorContext(r.Context(), "register: uniqueness check failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "register: hash password failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	key, err := auth.GenerateKey()
	if err != nil {
		slog.ErrorContext(r.Context(), "register: generate key failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var user *models.User
	var token *models.AuthToken
	err = db.WithTx(r.Context(), h.DB, func(tx db.DBTX) error {
		var err error
		if user, err = h.Users.WithTx(tx).Create(r.Context(), input.Username, input.Email, hash); err != nil {
			return err
		}
		token, err = h.Tokens.WithTx(tx).Create(r.Context(), key, user.ID)
		return err
	})
	if err != nil {
		if f := uniqueFieldError(err); f != nil {
			JSONValidationError(w, "validation failed", f, http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "register: create user failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncRegistrations()
	recordEvent(r.Context(), h.Events, user.ID, models.EventRegister, "")
	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)

	JSON(w, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"token":    token.Key,
	}, http.StatusCreated)
}

// checkUnique adds a field error for each non-nil value already owned by a
// user other than exceptID. Fields that already failed validation are skipped.
func checkUnique(ctx context.Context, users *repo.UserRepo, fields map[string]string, username, email *string, exceptID int) error {
	if _, bad := fields["username"]; username != nil && !bad {
		taken, err := users.ExistsUsername(ctx, *username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			fields["username"] = repo.ErrUsernameTaken.Error()
		}
	}
	if _, bad := fields["email"]; email != nil && !bad {
		taken, err := users.ExistsEmail(ctx, *email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			fields["email"] = repo.ErrEmailTaken.Error()
		}
	}
	return nil
}

// uniqueFieldError turns a uniqueness violation caught by the store into the
// same field error the pre-check reports.
func uniqueFieldError(err error) map[string]string {
	switch {
	case errors.Is(err, repo.ErrUsernameTaken):
		return map[string]string{"username": repo.ErrUsernameTaken.Error()}
	case errors.Is(err, repo.ErrEmailTaken):
		return map[string]string{"email": repo.ErrEmailTaken.Error()}
	}
	return nil
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		JSONError(w, "must include username and password", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		metrics.IncLogins("error")
		slog.ErrorContext(r.Context(), "login: lookup failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !auth.CheckPassword(hash, input.Password) || !user.IsActive() {
		metrics.IncLogins("invalid")
		JSONError(w, "invalid credentials", http.StatusBadRequest)
		return
	}

	key, err := auth.GenerateKey()
	if err != nil {
		metrics.IncLogins("error")
		slog.ErrorContext(r.Context(), "login: generate key failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	token, err := h.Tokens.GetOrCreate(r.Context(), key, user.ID)
	if err != nil {
		metrics.IncLogins("error")
		slog.ErrorContext(r.Context(), "login: issue token failed", "user_id", user.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogins("success")
	recordEvent(r.Context(), h.Events, user.ID, models.EventLogin, "")
	JSON(w, map[string]interface{}{
		"token": token.Key,
		"user":  userSummary{ID: user.ID, Username: user.Username, Email: user.Email},
	}, http.StatusOK)
}

// ==========================
// Logout
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		JSONError(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}

	if err := h.Tokens.Delete(r.Context(), p.Token.Key); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.ErrorContext(r.Context(), "logout: delete token failed", "user_id", p.User.ID, "error", err)
		}
		JSONError(w, "failed to logout", http.StatusBadRequest)
		return
	}
	recordEvent(r.Context(), h.Events, p.User.ID, models.EventLogout, "")

	JSON(w, map[string]string{"message": "successfully logged out"}, http.StatusOK)
}
