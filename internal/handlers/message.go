package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/groupchat/internal/metrics"
	"github.com/crucial707/groupchat/internal/middleware"
	"github.com/crucial707/groupchat/internal/models"
	"github.com/crucial707/groupchat/internal/repo"
)

// ==========================
// MessageHandler
// ==========================
type MessageHandler struct {
	Messages *repo.MessageRepo
}

// messagePage is one page of the message list.
type messagePage struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []models.Message `json:"results"`
}

// ==========================
// List Messages
// ==========================
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParsePageParams(r.URL.Query())

	count, err := h.Messages.Count(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "messages: count failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	messages, err := h.Messages.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "messages: list failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	next, previous := BuildPage(r.URL.Path, count, limit, offset)
	JSON(w, messagePage{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  messages,
	}, http.StatusOK)
}

// ==========================
// Create Message
// ==========================

// Create posts a message as the caller. Author fields in the body are ignored.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "authentication credentials were not provided", http.StatusUnauthorized)
		return
	}

	var input struct {
		Content string `json:"content" validate:"required,max=5000"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Content = strings.TrimSpace(input.Content)
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	msg, err := h.Messages.Create(r.Context(), userID, input.Content)
	if err != nil {
		slog.ErrorContext(r.Context(), "messages: create failed", "user_id", userID, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncMessagesPosted()
	JSON(w, msg, http.StatusCreated)
}
