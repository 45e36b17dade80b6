package domain

import "time"

type Message struct {
	ID         string    `db:"id"`
	ChatID     string    `db:"chat_id"`
	SenderID   string    `db:"sender_id"`
	ReceiverID *string   `db:"receiver_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}
