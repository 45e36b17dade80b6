package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opencircle/social-service/internal/domain"
	"github.com/opencircle/social-service/internal/postgres"
)

// Shared in-memory fakes for the service tests.

type fakeChatRepo struct {
	chats        map[string]*domain.Chat
	participants map[string][]string
	pairChat     *domain.Chat
	created      []*domain.Chat
	rooms        []domain.ChatRoom
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:        map[string]*domain.Chat{},
		participants: map[string][]string{},
	}
}

func (f *fakeChatRepo) addChat(id string, public bool, participants ...string) {
	f.chats[id] = &domain.Chat{ID: id, IsPublic: public, CreatedAt: time.Now()}
	f.participants[id] = participants
}

func (f *fakeChatRepo) Get(_ context.Context, id string) (*domain.Chat, error) {
	if c, ok := f.chats[id]; ok {
		return c, nil
	}
	return nil, domain.ErrChatNotFound
}

func (f *fakeChatRepo) GetPublic(_ context.Context) (*domain.Chat, error) {
	for _, c := range f.chats {
		if c.IsPublic {
			return c, nil
		}
	}
	c := &domain.Chat{ID: "public", IsPublic: true, CreatedAt: time.Now()}
	f.chats[c.ID] = c
	return c, nil
}

func (f *fakeChatRepo) IsParticipant(_ context.Context, chatID, userID string) (bool, error) {
	for _, id := range f.participants[chatID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatRepo) ListParticipantIDs(_ context.Context, chatID string) ([]string, error) {
	return f.participants[chatID], nil
}

func (f *fakeChatRepo) FindPrivateByPair(_ context.Context, _, _ string) (*domain.Chat, error) {
	if f.pairChat != nil {
		return f.pairChat, nil
	}
	return nil, domain.ErrChatNotFound
}

func (f *fakeChatRepo) CreatePrivate(_ context.Context, userIDs []string) (*domain.Chat, error) {
	c := &domain.Chat{ID: fmt.Sprintf("chat-%d", len(f.created)+1), CreatedAt: time.Now()}
	f.chats[c.ID] = c
	f.participants[c.ID] = userIDs
	f.created = append(f.created, c)
	return c, nil
}

func (f *fakeChatRepo) ListRoomsForUser(_ context.Context, _ string) ([]domain.ChatRoom, error) {
	return f.rooms, nil
}

type fakeMessageRepo struct {
	messages []domain.Message
}

func (f *fakeMessageRepo) Create(_ context.Context, chatID, senderID string, receiverID *string, content string) (*domain.Message, error) {
	m := domain.Message{
		ID:         fmt.Sprintf("m%d", len(f.messages)+1),
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeMessageRepo) ListAfter(_ context.Context, chatID string, after time.Time, limit int) ([]domain.Message, error) {
	var out []domain.Message
	for _, m := range f.messages {
		if m.ChatID == chatID && m.CreatedAt.After(after) {
			out = append(out, m)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users   map[string]*domain.User
	touched []string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Get(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) TouchLastSeen(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakeNotificationStore struct {
	rows        []*domain.Notification
	createErr   error
	unread      int
	markedAll   []string
	markedOne   [][2]string
	markReadErr error
}

func (f *fakeNotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = fmt.Sprintf("n%d", len(f.rows)+1)
	n.CreatedAt = time.Now()
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotificationStore) ListByRecipient(_ context.Context, recipientID string, _ int) ([]domain.NotificationView, error) {
	var out []domain.NotificationView
	for _, n := range f.rows {
		if n.RecipientID == recipientID {
			out = append(out, domain.NotificationView{Notification: *n})
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, _ string) (int, error) {
	return f.unread, nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, recipientID string) error {
	f.markedAll = append(f.markedAll, recipientID)
	return nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, recipientID string) error {
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.markedOne = append(f.markedOne, [2]string{id, recipientID})
	return nil
}

func (f *fakeNotificationStore) byType(t domain.NotificationType) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.rows {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// sink collects everything published on a bus topic.
type sink struct {
	got []any
}

func (s *sink) Send(v any) error {
	s.got = append(s.got, v)
	return nil
}

type fakePresence struct {
	present map[string]bool // chatID+"/"+userID
}

func (f *fakePresence) IsPresent(chatID, userID string) bool {
	return f.present[chatID+"/"+userID]
}

type fakeFollowRepo struct {
	edges     map[string]bool // follower+"->"+following
	listCalls int
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: map[string]bool{}}
}

func edgeKey(a, b string) string { return a + "->" + b }

func (f *fakeFollowRepo) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	return f.edges[edgeKey(followerID, followingID)], nil
}

func (f *fakeFollowRepo) Create(_ context.Context, followerID, followingID string) error {
	f.edges[edgeKey(followerID, followingID)] = true
	return nil
}

func (f *fakeFollowRepo) Delete(_ context.Context, followerID, followingID string) error {
	delete(f.edges, edgeKey(followerID, followingID))
	return nil
}

func (f *fakeFollowRepo) ListFollowingIDs(_ context.Context, followerID string) ([]string, error) {
	f.listCalls++
	var out []string
	prefix := followerID + "->"
	for k, ok := range f.edges {
		if ok && strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeFollowRepo) ListFollowerIDs(_ context.Context, followingID string) ([]string, error) {
	var out []string
	suffix := "->" + followingID
	for k, ok := range f.edges {
		if ok && strings.HasSuffix(k, suffix) {
			out = append(out, strings.TrimSuffix(k, suffix))
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeFeedRepo struct {
	posts   []domain.PostView
	reposts []postgres.FeedRepost
}

func (f *fakeFeedRepo) ListFeedPosts(_ context.Context, authorIDs []string, before time.Time, limit int) ([]domain.PostView, error) {
	allowed := map[string]bool{}
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var out []domain.PostView
	for _, p := range f.posts {
		if allowed[p.AuthorID] && p.CreatedAt.Before(before) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFeedRepo) ListFeedReposts(_ context.Context, userIDs []string, before time.Time, limit int) ([]postgres.FeedRepost, error) {
	allowed := map[string]bool{}
	for _, id := range userIDs {
		allowed[id] = true
	}
	var out []postgres.FeedRepost
	for _, r := range f.reposts {
		if allowed[r.Repost.UserID] && r.Repost.CreatedAt.Before(before) {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
