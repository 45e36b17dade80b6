package http

import (
	"time"

	"github.com/opencircle/social-service/internal/service"
)

type SendMessageRequest struct {
	ChatID     string  `json:"chatId"`
	Content    string  `json:"content"`
	ReceiverID *string `json:"receiverId,omitempty"`
}

type CreateRoomRequest struct {
	UserIDs []string `json:"userIds"`
}

type ChatItem struct {
	ID        string    `json:"id"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomItem struct {
	ChatItem
	Members     []service.UserSummary `json:"members"`
	LastMessage *MessageItem          `json:"lastMessage,omitempty"`
}

type MessageItem struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	SenderID   string    `json:"senderId"`
	ReceiverID *string   `json:"receiverId,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MessagesResponse struct {
	Items []MessageItem `json:"items"`
}

type FeedItemResponse struct {
	ID           string              `json:"id"`
	Author       service.UserSummary `json:"author"`
	Content      *string             `json:"content"`
	Image        *string             `json:"image,omitempty"`
	IsRepost     bool                `json:"isRepost"`
	OriginalPost *FeedPostResponse   `json:"originalPost,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

type FeedPostResponse struct {
	ID        string              `json:"id"`
	Author    service.UserSummary `json:"author"`
	Content   *string             `json:"content"`
	Image     *string             `json:"image,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

type FeedResponse struct {
	Posts      []FeedItemResponse `json:"posts"`
	NextCursor *string            `json:"nextCursor"`
}

type NotificationItem struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Issuer      service.UserSummary `json:"issuer"`
	PostID      *string             `json:"postId,omitempty"`
	PostContent *string             `json:"postContent,omitempty"`
	CommentID   *string             `json:"commentId,omitempty"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"createdAt"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}
