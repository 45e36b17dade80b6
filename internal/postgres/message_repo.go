package postgres

import (
	"context"
	"time"

	"github.com/opencircle/social-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, chatID, senderID string, receiverID *string, content string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, receiver_id, content, created_at
	`, chatID, senderID, receiverID, content)

	var m domain.Message
	if err := row.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListAfter returns chat messages strictly newer than after, ascending, which
// is the order the protocol delivers them in.
func (r *MessageRepository) ListAfter(ctx context.Context, chatID string, after time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE chat_id = $1 AND created_at > $2
		ORDER BY created_at ASC
		LIMIT $3
	`, chatID, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
