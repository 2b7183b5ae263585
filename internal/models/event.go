package models

import "time"

// Account event actions.
const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventLogout        = "logout"
	EventProfileUpdate = "profile_update"
)

// AccountEvent is one entry in a user's account activity log.
type AccountEvent struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
