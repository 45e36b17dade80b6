package service

import (
	"time"

	"github.com/opencircle/social-service/internal/bus"
	"github.com/opencircle/social-service/internal/domain"
)

// UserSummary is the sender block embedded in outbound frames.
type UserSummary struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
}

func summarize(u *domain.User) UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Image: u.Image}
}

// MessageEnvelope is the "new_message" frame delivered to room subscribers.
type MessageEnvelope struct {
	Type       string      `json:"type"`
	ID         string      `json:"id"`
	ChatID     string      `json:"chatId"`
	SenderID   string      `json:"senderId"`
	ReceiverID *string     `json:"receiverId,omitempty"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Sender     UserSummary `json:"sender"`
}

// RefreshSignal is the advisory frame on a user topic: the payload carries no
// state, clients re-fetch unread counts and lists on receipt.
type RefreshSignal struct {
	Type string `json:"type"`
}

// Dispatcher decouples notification creation from delivery: creation writes
// the durable row, delivery is a non-durable publish that only reaches
// currently-subscribed sockets.
type Dispatcher struct {
	bus *bus.Bus
}

func NewDispatcher(b *bus.Bus) *Dispatcher {
	return &Dispatcher{bus: b}
}

// Notify nudges every open connection on the recipient's personal topic.
func (d *Dispatcher) Notify(recipientID string) {
	d.bus.Publish(bus.UserTopic(recipientID), RefreshSignal{Type: "refresh"})
}

// NotifyChat fans a message out to every open connection on the chat topic;
// used when the event originates outside an active socket (the REST path).
func (d *Dispatcher) NotifyChat(chatID string, env MessageEnvelope) {
	d.bus.Publish(bus.ChatTopic(chatID), env)
}
