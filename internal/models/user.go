package models

import "time"

// Account statuses. Only active users can authenticate.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == StatusActive
}
