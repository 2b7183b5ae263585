package handlers

import (
	"context"
	"log/slog"

	"github.com/crucial707/groupchat/internal/repo"
)

// recordEvent appends to the account activity log when one is configured.
// Failures are logged and otherwise ignored; the request has already succeeded.
func recordEvent(ctx context.Context, events *repo.EventRepo, userID int, action, details string) {
	if events == nil {
		return
	}
	if err := events.Log(ctx, userID, action, details); err != nil {
		slog.WarnContext(ctx, "record account event failed", "user_id", userID, "action", action, "error", err)
	}
}
