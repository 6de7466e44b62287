package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"courier/internal/domain"
	"courier/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	from_username TEXT NOT NULL REFERENCES users(username),
	to_username TEXT NOT NULL REFERENCES users(username),
	body TEXT NOT NULL,
	sent_at DATETIME NOT NULL,
	read_at DATETIME NULL
);
`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListFrom(ctx context.Context, username string) ([]domain.SentMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT m.id, m.body, m.sent_at, m.read_at, u.username, u.first_name, u.last_name, u.phone
FROM messages AS m
JOIN users AS u ON m.to_username = u.username
WHERE m.from_username = ?
ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages from %q: %w", username, err)
	}
	defer rows.Close()

	var messages []domain.SentMessage
	for rows.Next() {
		var (
			m      domain.SentMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&readAt,
			&m.To.Username,
			&m.To.FirstName,
			&m.To.LastName,
			&m.To.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan sent message: %w", err)
		}
		if readAt.Valid {
			v := readAt.Time
			m.ReadAt = &v
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent messages: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) ListTo(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT m.id, m.body, m.sent_at, m.read_at, u.username, u.first_name, u.last_name, u.phone
FROM messages AS m
JOIN users AS u ON m.from_username = u.username
WHERE m.to_username = ?
ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages to %q: %w", username, err)
	}
	defer rows.Close()

	var messages []domain.ReceivedMessage
	for rows.Next() {
		var (
			m      domain.ReceivedMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&readAt,
			&m.From.Username,
			&m.From.FirstName,
			&m.From.LastName,
			&m.From.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan received message: %w", err)
		}
		if readAt.Valid {
			v := readAt.Time
			m.ReadAt = &v
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate received messages: %w", err)
	}
	return messages, nil
}
