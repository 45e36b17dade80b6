package domain

import "time"

type NotificationType string

const (
	NotificationMessage NotificationType = "MESSAGE"
	NotificationLike    NotificationType = "LIKE"
	NotificationComment NotificationType = "COMMENT"
	NotificationReply   NotificationType = "REPLY"
	NotificationMention NotificationType = "MENTION"
	NotificationFollow  NotificationType = "FOLLOW"
	NotificationRepost  NotificationType = "REPOST"
	NotificationQuote   NotificationType = "QUOTE"
)

type Notification struct {
	ID          string           `db:"id"`
	Type        NotificationType `db:"type"`
	RecipientID string           `db:"recipient_id"`
	IssuerID    string           `db:"issuer_id"`
	PostID      *string          `db:"post_id"`
	CommentID   *string          `db:"comment_id"`
	Read        bool             `db:"read"`
	CreatedAt   time.Time        `db:"created_at"`
}

// NotificationView joins the issuer summary and an optional post snippet for
// the notification list endpoint.
type NotificationView struct {
	Notification
	Issuer      User
	PostContent *string
}
