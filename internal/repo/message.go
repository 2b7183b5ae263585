package repo

import (
	"context"
	"fmt"

	"github.com/crucial707/groupchat/internal/db"
	"github.com/crucial707/groupchat/internal/models"
)

// ========================
// REPOSITORY STRUCT
// ========================

type MessageRepo struct {
	DB db.DBTX
}

func NewMessageRepo(conn db.DBTX) *MessageRepo {
	return &MessageRepo{DB: conn}
}

func scanMessage(row interface{ Scan(...any) error }) (models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID,
		&m.Content,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Author.ID,
		&m.Author.Username,
		&m.Author.Email,
		&m.Author.CreatedAt,
	)
	return m, err
}

// ========================
// CREATE MESSAGE
// ========================

func (r *MessageRepo) Create(ctx context.Context, authorID int, content string) (models.Message, error) {
	row := r.DB.QueryRowContext(ctx,
		`WITH inserted AS (
		     INSERT INTO messages (author_id, content)
		     VALUES ($1, $2)
		     RETURNING id, author_id, content, created_at, updated_at
		 )
		 SELECT i.id, i.content, i.created_at, i.updated_at,
		        u.id, u.username, u.email, u.created_at
		 FROM inserted i
		 JOIN users u ON u.id = i.author_id`,
		authorID, content,
	)
	m, err := scanMessage(row)
	if err != nil {
		return models.Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ========================
// LIST MESSAGES WITH PAGINATION
// ========================

// List returns one page of messages, most recent first.
func (r *MessageRepo) List(ctx context.Context, limit, offset int) ([]models.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id, m.content, m.created_at, m.updated_at,
		        u.id, u.username, u.email, u.created_at
		 FROM messages m
		 JOIN users u ON u.id = m.author_id
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ========================
// COUNT MESSAGES
// ========================

func (r *MessageRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}
