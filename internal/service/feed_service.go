package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/domain"
	"github.com/opencircle/social-service/internal/postgres"
)

type FollowRepo interface {
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)
	ListFollowerIDs(ctx context.Context, followingID string) ([]string, error)
}

type FeedPostRepo interface {
	ListFeedPosts(ctx context.Context, authorIDs []string, before time.Time, limit int) ([]domain.PostView, error)
	ListFeedReposts(ctx context.Context, userIDs []string, before time.Time, limit int) ([]postgres.FeedRepost, error)
}

const followSetTTL = 300 * time.Second

// FeedPage is one cursor page of the home feed. NextCursor is nil at the end
// of the feed.
type FeedPage struct {
	Posts      []domain.FeedItem `json:"posts"`
	NextCursor *string           `json:"nextCursor"`
}

type FeedService struct {
	follows FollowRepo
	posts   FeedPostRepo
	cache   cache.Cache
}

func NewFeedService(follows FollowRepo, posts FeedPostRepo, c cache.Cache) *FeedService {
	return &FeedService{follows: follows, posts: posts, cache: c}
}

// GetFeed merges followees' public posts and reposts into one page ordered by
// createdAt descending. The cursor is an exclusive epoch-ms upper bound, so
// repeated calls over an unchanging data set are deterministic and pages
// never repeat items.
func (s *FeedService) GetFeed(ctx context.Context, userID, cursor string, limit int) (*FeedPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	cursorDate, err := postgres.ParseCursor(cursor)
	if err != nil {
		return nil, err
	}

	followees, err := s.followSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve follow set: %w", err)
	}
	if len(followees) == 0 {
		return &FeedPage{Posts: []domain.FeedItem{}}, nil
	}

	posts, err := s.posts.ListFeedPosts(ctx, followees, cursorDate, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	reposts, err := s.posts.ListFeedReposts(ctx, followees, cursorDate, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch reposts: %w", err)
	}

	items := mergeFeed(posts, reposts)
	if len(items) > limit {
		items = items[:limit]
	}

	page := &FeedPage{Posts: items}
	if len(items) == limit {
		next := postgres.FormatCursor(items[len(items)-1].CreatedAt)
		page.NextCursor = &next
	}
	return page, nil
}

// followSet returns the cached followee ids, populating the cache on a miss.
// Empty sets are not cached, per the read path's original behavior.
func (s *FeedService) followSet(ctx context.Context, userID string) ([]string, error) {
	key := "followset:" + userID

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("follow set cache read failed", "user", userID, "err", err)
	} else if ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			return ids, nil
		}
		slog.Warn("follow set cache entry corrupt", "user", userID)
	}

	ids, err := s.follows.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		if raw, err := json.Marshal(ids); err == nil {
			if err := s.cache.SetWithTTL(ctx, key, string(raw), followSetTTL); err != nil {
				slog.Warn("follow set cache write failed", "user", userID, "err", err)
			}
		}
	}
	return ids, nil
}

// mergeFeed zips two createdAt-descending streams, posts winning ties, and
// materializes reposts as virtual posts.
func mergeFeed(posts []domain.PostView, reposts []postgres.FeedRepost) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, len(posts)+len(reposts))
	i, j := 0, 0
	for i < len(posts) || j < len(reposts) {
		takePost := j >= len(reposts) ||
			(i < len(posts) && !posts[i].CreatedAt.Before(reposts[j].Repost.CreatedAt))

		if takePost {
			p := posts[i]
			items = append(items, domain.FeedItem{
				ID:        p.ID,
				Author:    p.Author,
				Content:   p.Content,
				Image:     p.Image,
				CreatedAt: p.CreatedAt,
			})
			i++
		} else {
			r := reposts[j]
			target := r.Post
			items = append(items, domain.FeedItem{
				ID:           "repost_" + r.Repost.ID,
				Author:       r.User,
				Content:      target.Content,
				Image:        target.Image,
				IsRepost:     true,
				OriginalPost: &target,
				CreatedAt:    r.Repost.CreatedAt,
			})
			j++
		}
	}
	return items
}
