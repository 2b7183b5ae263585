package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/groupchat/internal/db"
	"github.com/crucial707/groupchat/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB db.DBTX
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(conn db.DBTX) *UserRepo {
	return &UserRepo{DB: conn}
}

// WithTx returns a UserRepo bound to tx.
func (r *UserRepo) WithTx(tx db.DBTX) *UserRepo {
	return &UserRepo{DB: tx}
}

const userColumns = `id, username, email, password_hash, status, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Status, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username, email, passwordHash))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// ==========================
// Uniqueness checks
// ==========================

// ExistsUsername reports whether a user other than exceptID owns username.
// Pass exceptID 0 to check against every user.
func (r *UserRepo) ExistsUsername(ctx context.Context, username string, exceptID int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, exceptID)
}

// ExistsEmail reports whether a user other than exceptID owns email.
func (r *UserRepo) ExistsEmail(ctx context.Context, email string, exceptID int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`, email, exceptID)
}

func (r *UserRepo) exists(ctx context.Context, query, value string, exceptID int) (bool, error) {
	var found bool
	if err := r.DB.QueryRowContext(ctx, query, value, exceptID).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// ==========================
// Update User
// ==========================

// Update changes username and/or email; nil leaves the column as is.
func (r *UserRepo) Update(ctx context.Context, id int, username, email *string) (*models.User, error) {
	query := `
		UPDATE users
		SET username = COALESCE($1, username),
		    email = COALESCE($2, email)
		WHERE id = $3
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username, email, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return user, nil
}

// ==========================
// Count Users
// ==========================
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
