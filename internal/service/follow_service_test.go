package service

import (
	"context"
	"errors"
	"testing"

	"github.com/opencircle/social-service/internal/bus"
	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/domain"
)

type followFixture struct {
	svc     *FollowService
	follows *fakeFollowRepo
	notifs  *fakeNotificationStore
	bus     *bus.Bus
	cache   *cache.Memory
}

func newFollowFixture(t *testing.T) *followFixture {
	t.Helper()
	f := &followFixture{
		follows: newFakeFollowRepo(),
		notifs:  &fakeNotificationStore{},
		bus:     bus.New(),
		cache:   cache.NewMemory(),
	}
	t.Cleanup(f.cache.Close)
	f.svc = NewFollowService(f.follows, f.notifs, NewDispatcher(f.bus), f.cache)
	return f
}

func TestToggleFollowsThenUnfollows(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()

	res, err := f.svc.Toggle(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !res.Following || res.Message != "Followed" {
		t.Fatalf("first toggle = %+v, want Followed", res)
	}
	if ok, _ := f.follows.Exists(ctx, "alice", "bob"); !ok {
		t.Fatal("edge should exist after the first toggle")
	}

	res, err = f.svc.Toggle(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Following || res.Message != "Unfollowed" {
		t.Fatalf("second toggle = %+v, want Unfollowed", res)
	}
	if ok, _ := f.follows.Exists(ctx, "alice", "bob"); ok {
		t.Fatal("edge should be gone after the second toggle")
	}
}

func TestToggleSelfFollow(t *testing.T) {
	f := newFollowFixture(t)

	if _, err := f.svc.Toggle(context.Background(), "alice", "alice"); !errors.Is(err, domain.ErrSelfFollow) {
		t.Fatalf("err = %v, want ErrSelfFollow", err)
	}
}

func TestToggleNotifiesOnFollowOnly(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()

	personal := &sink{}
	f.bus.Subscribe(bus.UserTopic("bob"), personal)

	if _, err := f.svc.Toggle(ctx, "alice", "bob"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := f.svc.Toggle(ctx, "alice", "bob"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	rows := f.notifs.byType(domain.NotificationFollow)
	if len(rows) != 1 {
		t.Fatalf("got %d FOLLOW notifications, want 1 (follow half only)", len(rows))
	}
	if rows[0].RecipientID != "bob" || rows[0].IssuerID != "alice" {
		t.Fatalf("unexpected notification %+v", rows[0])
	}
	if len(personal.got) != 1 {
		t.Fatalf("personal topic got %d frames, want 1", len(personal.got))
	}
}

func TestToggleSurvivesNotificationFailure(t *testing.T) {
	f := newFollowFixture(t)
	f.notifs.createErr = errors.New("db down")

	res, err := f.svc.Toggle(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("toggle should survive notification failure, got %v", err)
	}
	if !res.Following {
		t.Fatal("follow edge should still be recorded")
	}
}

func TestToggleInvalidatesCachedLists(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()

	_, _ = f.svc.Toggle(ctx, "alice", "bob")

	// warm the caches
	if ids, _ := f.svc.Following(ctx, "alice"); len(ids) != 1 {
		t.Fatalf("following = %v, want [bob]", ids)
	}
	if ids, _ := f.svc.Followers(ctx, "bob"); len(ids) != 1 {
		t.Fatalf("followers = %v, want [alice]", ids)
	}

	_, _ = f.svc.Toggle(ctx, "alice", "bob") // unfollow

	if ids, _ := f.svc.Following(ctx, "alice"); len(ids) != 0 {
		t.Fatalf("stale following list served after unfollow: %v", ids)
	}
	if ids, _ := f.svc.Followers(ctx, "bob"); len(ids) != 0 {
		t.Fatalf("stale followers list served after unfollow: %v", ids)
	}
}
