package repo

import (
	"context"
	"fmt"

	"github.com/crucial707/groupchat/internal/db"
	"github.com/crucial707/groupchat/internal/models"
)

// EventRepo persists the per-user account activity log.
type EventRepo struct {
	DB db.DBTX
}

// NewEventRepo returns a new EventRepo.
func NewEventRepo(conn db.DBTX) *EventRepo {
	return &EventRepo{DB: conn}
}

// Log records an account event. action is one of the models.Event* constants.
func (r *EventRepo) Log(ctx context.Context, userID int, action, details string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO account_events (user_id, action, details) VALUES ($1, $2, $3)`,
		userID, action, details,
	)
	if err != nil {
		return fmt.Errorf("log %s event: %w", action, err)
	}
	return nil
}

// ListForUser returns one page of the user's events, newest first.
func (r *EventRepo) ListForUser(ctx context.Context, userID, limit, offset int) ([]models.AccountEvent, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, action, details, created_at
		 FROM account_events
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]models.AccountEvent, 0, limit)
	for rows.Next() {
		var e models.AccountEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountForUser returns how many events the user has.
func (r *EventRepo) CountForUser(ctx context.Context, userID int) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_events WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}
