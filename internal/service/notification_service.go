package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/domain"
)

const unreadTTL = 60 * time.Second

type NotificationStore interface {
	NotificationRepo
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.NotificationView, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkAllRead(ctx context.Context, recipientID string) error
	MarkRead(ctx context.Context, id, recipientID string) error
}

type NotificationService struct {
	store NotificationStore
	cache cache.Cache
}

func NewNotificationService(store NotificationStore, c cache.Cache) *NotificationService {
	return &NotificationService{store: store, cache: c}
}

func (s *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]domain.NotificationView, error) {
	return s.store.ListByRecipient(ctx, recipientID, limit)
}

// UnreadCount serves from cache when possible; the count is advisory, the
// rows are the durable record.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	key := "unread:" + recipientID

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("unread count cache read failed", "user", recipientID, "err", err)
	} else if ok {
		if n, err := strconv.Atoi(raw); err == nil {
			return n, nil
		}
	}

	n, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetWithTTL(ctx, key, strconv.Itoa(n), unreadTTL); err != nil {
		slog.Warn("unread count cache write failed", "user", recipientID, "err", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.store.MarkAllRead(ctx, recipientID); err != nil {
		return err
	}
	s.dropUnread(ctx, recipientID)
	return nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	if err := s.store.MarkRead(ctx, id, recipientID); err != nil {
		return err
	}
	s.dropUnread(ctx, recipientID)
	return nil
}

func (s *NotificationService) dropUnread(ctx context.Context, recipientID string) {
	if err := s.cache.Del(ctx, "unread:"+recipientID); err != nil {
		slog.Warn("unread count cache invalidation failed", "user", recipientID, "err", err)
	}
}
