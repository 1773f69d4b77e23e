package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sritlabs/sat-backend/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository handles admin mailbox data access.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts a new admin message.
func (r *MessageRepository) Create(ctx context.Context, m *model.AdminMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO admin_messages (admin_id, sender_id, subject, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_read, created_at`,
		m.AdminID, m.SenderID, m.Subject, m.Body,
	).Scan(&m.ID, &m.Read, &m.CreatedAt)
}

// ListForAdmin retrieves an admin's messages, newest first.
func (r *MessageRepository) ListForAdmin(ctx context.Context, adminID int) ([]model.AdminMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, admin_id, sender_id, subject, body, is_read, created_at
		 FROM admin_messages
		 WHERE admin_id = $1
		 ORDER BY created_at DESC`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.AdminMessage
	for rows.Next() {
		var m model.AdminMessage
		if err := rows.Scan(&m.ID, &m.AdminID, &m.SenderID, &m.Subject, &m.Body,
			&m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if messages == nil {
		messages = []model.AdminMessage{}
	}
	return messages, rows.Err()
}

// CountUnread returns the number of unread messages in an admin's mailbox.
func (r *MessageRepository) CountUnread(ctx context.Context, adminID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admin_messages WHERE admin_id = $1 AND is_read = FALSE`,
		adminID).Scan(&n)
	return n, err
}

// MarkRead flags a message as read. The recipient scope keeps admins from
// touching each other's mailboxes.
func (r *MessageRepository) MarkRead(ctx context.Context, id, adminID int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admin_messages SET is_read = TRUE WHERE id = $1 AND admin_id = $2`,
		id, adminID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
