package models

import "time"

// AuthToken is an opaque bearer key bound to one user.
type AuthToken struct {
	Key       string    `json:"key"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
