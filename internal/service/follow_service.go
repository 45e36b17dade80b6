package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/domain"
)

const followListTTL = 300 * time.Second

// FollowResult reports the net state after a toggle.
type FollowResult struct {
	Message   string `json:"message"`
	Following bool   `json:"following"`
}

type FollowService struct {
	follows       FollowRepo
	notifications NotificationRepo
	dispatcher    *Dispatcher
	cache         cache.Cache
}

func NewFollowService(follows FollowRepo, notifications NotificationRepo, dispatcher *Dispatcher, c cache.Cache) *FollowService {
	return &FollowService{
		follows:       follows,
		notifications: notifications,
		dispatcher:    dispatcher,
		cache:         c,
	}
}

// Toggle follows the target if no edge exists, else removes it. The second
// call of a double-follow therefore reports "Unfollowed". A FOLLOW
// notification is created only on the follow half; its failure is logged,
// not returned.
func (s *FollowService) Toggle(ctx context.Context, followerID, followingID string) (*FollowResult, error) {
	if followerID == followingID {
		return nil, domain.ErrSelfFollow
	}

	exists, err := s.follows.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, fmt.Errorf("follow lookup: %w", err)
	}

	if exists {
		if err := s.follows.Delete(ctx, followerID, followingID); err != nil {
			return nil, fmt.Errorf("unfollow: %w", err)
		}
		s.invalidate(ctx, followerID, followingID)
		return &FollowResult{Message: "Unfollowed", Following: false}, nil
	}

	if err := s.follows.Create(ctx, followerID, followingID); err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}
	s.invalidate(ctx, followerID, followingID)

	n := &domain.Notification{
		Type:        domain.NotificationFollow,
		RecipientID: followingID,
		IssuerID:    followerID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		slog.Error("create follow notification failed",
			"recipient", followingID, "err", err)
	} else {
		s.dispatcher.Notify(followingID)
	}

	return &FollowResult{Message: "Followed", Following: true}, nil
}

func (s *FollowService) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.cachedList(ctx, "followers:"+userID, func() ([]string, error) {
		return s.follows.ListFollowerIDs(ctx, userID)
	})
}

func (s *FollowService) Following(ctx context.Context, userID string) ([]string, error) {
	return s.cachedList(ctx, "following:"+userID, func() ([]string, error) {
		return s.follows.ListFollowingIDs(ctx, userID)
	})
}

func (s *FollowService) cachedList(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("follow list cache read failed", "key", key, "err", err)
	} else if ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return ids, nil
		}
	}

	ids, err := load()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	if raw, err := json.Marshal(ids); err == nil {
		if err := s.cache.SetWithTTL(ctx, key, string(raw), followListTTL); err != nil {
			slog.Warn("follow list cache write failed", "key", key, "err", err)
		}
	}
	return ids, nil
}

// invalidate drops every derived view the edge change touches, including the
// feed's follow set.
func (s *FollowService) invalidate(ctx context.Context, followerID, followingID string) {
	err := s.cache.Del(ctx,
		"followset:"+followerID,
		"following:"+followerID,
		"followers:"+followingID,
	)
	if err != nil {
		slog.Warn("follow cache invalidation failed", "err", err)
	}
}
