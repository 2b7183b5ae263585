package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/crucial707/groupchat/internal/db"
	"github.com/crucial707/groupchat/internal/models"
)

// TokenRepo persists opaque auth tokens. A user holds at most one token.
type TokenRepo struct {
	DB db.DBTX
}

func NewTokenRepo(conn db.DBTX) *TokenRepo {
	return &TokenRepo{DB: conn}
}

// WithTx returns a TokenRepo bound to tx.
func (r *TokenRepo) WithTx(tx db.DBTX) *TokenRepo {
	return &TokenRepo{DB: tx}
}

// Create stores a new token with the given key for userID.
func (r *TokenRepo) Create(ctx context.Context, key string, userID int) (*models.AuthToken, error) {
	t := &models.AuthToken{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2) RETURNING key, user_id, created_at`,
		key, userID,
	).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return t, nil
}

// GetOrCreate returns the user's existing token, or stores one with key when
// the user has none. The upsert keeps the original key on conflict, so
// concurrent logins for one user all observe the same token.
func (r *TokenRepo) GetOrCreate(ctx context.Context, key string, userID int) (*models.AuthToken, error) {
	t := &models.AuthToken{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING key, user_id, created_at`,
		key, userID,
	).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create token: %w", err)
	}
	return t, nil
}

// GetWithUser resolves a key to its token and owning user.
func (r *TokenRepo) GetWithUser(ctx context.Context, key string) (*models.AuthToken, *models.User, error) {
	t := &models.AuthToken{}
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT t.key, t.user_id, t.created_at,
		        u.id, u.username, u.email, u.password_hash, u.status, u.created_at
		 FROM auth_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.key = $1`,
		key,
	).Scan(&t.Key, &t.UserID, &t.CreatedAt,
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get token: %w", err)
	}
	return t, u, nil
}

// Delete removes the token. A missing key yields ErrNotFound.
func (r *TokenRepo) Delete(ctx context.Context, key string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
