package postgres

import (
	"context"

	"github.com/opencircle/social-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Get(ctx context.Context, id string) (*domain.Chat, error) {
	var c domain.Chat
	query := `SELECT id, is_public, created_at FROM chats WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.IsPublic, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetPublic returns the singleton public chat, creating it lazily on the
// first request. On a create race the oldest row wins on subsequent reads.
func (r *ChatRepository) GetPublic(ctx context.Context) (*domain.Chat, error) {
	var c domain.Chat
	err := r.db.QueryRow(ctx, `
		SELECT id, is_public, created_at FROM chats
		WHERE is_public = TRUE
		ORDER BY created_at ASC
		LIMIT 1
	`).Scan(&c.ID, &c.IsPublic, &c.CreatedAt)
	if err == nil {
		return &c, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO chats (is_public) VALUES (TRUE)
		RETURNING id, is_public, created_at
	`).Scan(&c.ID, &c.IsPublic, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) IsParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`,
		chatID, userID).Scan(&exists)
	return exists, err
}

func (r *ChatRepository) ListParticipantIDs(ctx context.Context, chatID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM chat_participants WHERE chat_id=$1`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindPrivateByPair returns the existing private chat containing exactly the
// two users, if one exists.
func (r *ChatRepository) FindPrivateByPair(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	var c domain.Chat
	err := r.db.QueryRow(ctx, `
		SELECT c.id, c.is_public, c.created_at
		FROM chats c
		WHERE c.is_public = FALSE
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = c.id AND user_id = $1)
		  AND EXISTS (SELECT 1 FROM chat_participants WHERE chat_id = c.id AND user_id = $2)
		LIMIT 1
	`, userA, userB).Scan(&c.ID, &c.IsPublic, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreatePrivate creates a private chat with the given participants in one
// transaction.
func (r *ChatRepository) CreatePrivate(ctx context.Context, userIDs []string) (*domain.Chat, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var c domain.Chat
	err = tx.QueryRow(ctx, `
		INSERT INTO chats (is_public) VALUES (FALSE)
		RETURNING id, is_public, created_at
	`).Scan(&c.ID, &c.IsPublic, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, uid := range userIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat_participants (chat_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, c.ID, uid); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListRoomsForUser returns the user's private chats with member summaries and
// the latest message of each.
func (r *ChatRepository) ListRoomsForUser(ctx context.Context, userID string) ([]domain.ChatRoom, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.is_public, c.created_at
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.id
		WHERE c.is_public = FALSE AND p.user_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(&c.ID, &c.IsPublic, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ChatRoom, 0, len(chats))
	for _, c := range chats {
		room := domain.ChatRoom{Chat: c}

		mrows, err := r.db.Query(ctx, `
			SELECT u.id, u.name, u.username, u.image
			FROM chat_participants p
			JOIN users u ON u.id = p.user_id
			WHERE p.chat_id = $1
		`, c.ID)
		if err != nil {
			return nil, err
		}
		for mrows.Next() {
			var u domain.User
			if err := mrows.Scan(&u.ID, &u.Name, &u.Username, &u.Image); err != nil {
				mrows.Close()
				return nil, err
			}
			room.Members = append(room.Members, u)
		}
		mrows.Close()
		if err := mrows.Err(); err != nil {
			return nil, err
		}

		var m domain.Message
		err = r.db.QueryRow(ctx, `
			SELECT id, chat_id, sender_id, receiver_id, content, created_at
			FROM messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		`, c.ID).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt)
		if err == nil {
			room.LastMessage = &m
		} else if err != pgx.ErrNoRows {
			return nil, err
		}

		out = append(out, room)
	}
	return out, nil
}
