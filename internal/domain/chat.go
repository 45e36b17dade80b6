package domain

import "time"

type Chat struct {
	ID        string    `db:"id"`
	IsPublic  bool      `db:"is_public"`
	CreatedAt time.Time `db:"created_at"`
}

// ChatRoom is the room-list view: a private chat with its member summaries
// and the most recent message, if any.
type ChatRoom struct {
	Chat
	Members     []User
	LastMessage *Message
}
