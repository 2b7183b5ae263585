package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/groupchat/internal/middleware"
	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
)

// ==========================
// ProfileHandler
// ==========================
type ProfileHandler struct {
	Users  *repo.UserRepo
	Events *repo.EventRepo
}

// Get returns the caller's own profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		JSONError(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}
	JSON(w, p.User, http.StatusOK)
}

// Update changes the caller's username and/or email. Absent fields are left
// unchanged; id and created_at in the body are ignored.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		JSONError(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}

	var input struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	fields := make(map[string]string)
	if input.Username != nil {
		*input.Username = strings.TrimSpace(*input.Username)
		validateValue(fields, "username", *input.Username, usernameRules)
	}
	if input.Email != nil {
		*input.Email = strings.TrimSpace(*input.Email)
		validateValue(fields, "email", *input.Email, emailRules)
	}
	if err := checkUnique(r.Context(), h.Users, fields, input.Username, input.Email, p.User.ID); err != nil {
		slog.ErrorContext(r.Context(), "profile: uniqueness check failed", "user_id", p.User.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Users.Update(r.Context(), p.User.ID, input.Username, input.Email)
	if err != nil {
		if f := uniqueFieldError(err); f != nil {
			JSONValidationError(w, "validation failed", f, http.StatusBadRequest)
			return
		}
		slog.ErrorContext(r.Context(), "profile: update failed", "user_id", p.User.ID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var changed []string
	if input.Username != nil && *input.Username != p.User.Username {
		changed = append(changed, "username")
	}
	if input.Email != nil && *input.Email != p.User.Email {
		changed = append(changed, "email")
	}
	if len(changed) > 0 {
		recordEvent(r.Context(), h.Events, user.ID, models.EventProfileUpdate, strings.Join(changed, ","))
	}

	JSON(w, user, http.StatusOK)
}

// eventPage is one page of the caller's account activity.
type eventPage struct {
	Count    int                   `json:"count"`
	Next     *string               `json:"next"`
	Previous *string               `json:"previous"`
	Results  []models.AccountEvent `json:"results"`
}

// Activity lists the caller's account events, newest first, paginated like messages.
func (h *ProfileHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}
	if h.Events == nil {
		JSONError(w, "activity log not enabled", http.StatusNotFound)
		return
	}
	limit, offset := ParsePageParams(r.URL.Query())

	count, err := h.Events.CountForUser(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "activity: count failed", "user_id", userID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	events, err := h.Events.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "activity: list failed", "user_id", userID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	next, previous := BuildPage(r.URL.Path, count, limit, offset)
	JSON(w, eventPage{Count: count, Next: next, Previous: previous, Results: events}, http.StatusOK)
}
