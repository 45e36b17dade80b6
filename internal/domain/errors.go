package domain

import "errors"

var (
	ErrChatNotFound         = errors.New("chat not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotParticipant       = errors.New("user is not a chat participant")
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrEmptyMessage         = errors.New("empty message")
	ErrMessageTooLong       = errors.New("message too long")
)
