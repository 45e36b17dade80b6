package service

import (
	"context"
	"errors"
	"testing"

	"github.com/opencircle/social-service/internal/cache"
	"github.com/opencircle/social-service/internal/domain"
)

func newNotifFixture(t *testing.T) (*NotificationService, *fakeNotificationStore) {
	t.Helper()
	store := &fakeNotificationStore{}
	c := cache.NewMemory()
	t.Cleanup(c.Close)
	return NewNotificationService(store, c), store
}

func TestUnreadCountIsCached(t *testing.T) {
	svc, store := newNotifFixture(t)
	ctx := context.Background()
	store.unread = 3

	n, err := svc.UnreadCount(ctx, "bob")
	if err != nil || n != 3 {
		t.Fatalf("count = (%d, %v), want (3, nil)", n, err)
	}

	// backing count changes but within the TTL the cached value wins
	store.unread = 7
	if n, _ := svc.UnreadCount(ctx, "bob"); n != 3 {
		t.Fatalf("count = %d, want the cached 3", n)
	}
}

func TestMarkAllReadInvalidatesCount(t *testing.T) {
	svc, store := newNotifFixture(t)
	ctx := context.Background()
	store.unread = 5

	if _, err := svc.UnreadCount(ctx, "bob"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if err := svc.MarkAllRead(ctx, "bob"); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if len(store.markedAll) != 1 || store.markedAll[0] != "bob" {
		t.Fatalf("markedAll = %v", store.markedAll)
	}

	store.unread = 0
	if n, _ := svc.UnreadCount(ctx, "bob"); n != 0 {
		t.Fatalf("count = %d, want fresh 0 after invalidation", n)
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	svc, store := newNotifFixture(t)

	if err := svc.MarkRead(context.Background(), "n1", "bob"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if len(store.markedOne) != 1 || store.markedOne[0] != [2]string{"n1", "bob"} {
		t.Fatalf("markedOne = %v", store.markedOne)
	}
}

func TestMarkReadPropagatesNotFound(t *testing.T) {
	svc, store := newNotifFixture(t)
	store.markReadErr = domain.ErrNotificationNotFound

	if err := svc.MarkRead(context.Background(), "ghost", "bob"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestListDelegatesToStore(t *testing.T) {
	svc, store := newNotifFixture(t)
	ctx := context.Background()

	_ = store.Create(ctx, &domain.Notification{Type: domain.NotificationFollow, RecipientID: "bob", IssuerID: "alice"})
	_ = store.Create(ctx, &domain.Notification{Type: domain.NotificationMention, RecipientID: "carol", IssuerID: "alice"})

	views, err := svc.List(ctx, "bob", 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].RecipientID != "bob" {
		t.Fatalf("views = %+v, want only bob's row", views)
	}
}
