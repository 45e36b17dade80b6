package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/opencircle/social-service/internal/ai"
	"github.com/opencircle/social-service/internal/domain"
)

type ChatRepo interface {
	Get(ctx context.Context, id string) (*domain.Chat, error)
	GetPublic(ctx context.Context) (*domain.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
	ListParticipantIDs(ctx context.Context, chatID string) ([]string, error)
	FindPrivateByPair(ctx context.Context, userA, userB string) (*domain.Chat, error)
	CreatePrivate(ctx context.Context, userIDs []string) (*domain.Chat, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]domain.ChatRoom, error)
}

type MessageRepo interface {
	Create(ctx context.Context, chatID, senderID string, receiverID *string, content string) (*domain.Message, error)
	ListAfter(ctx context.Context, chatID string, after time.Time, limit int) ([]domain.Message, error)
}

type UserRepo interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	TouchLastSeen(ctx context.Context, id string) error
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// PresenceChecker is the read side of the connection registry.
type PresenceChecker interface {
	IsPresent(chatID, userID string) bool
}

var mentionRe = regexp.MustCompile(`@(\w+)`)

type ChatService struct {
	chats         ChatRepo
	messages      MessageRepo
	users         UserRepo
	notifications NotificationRepo
	presence      PresenceChecker
	dispatcher    *Dispatcher
	tasks         *Tasks
	responder     ai.Responder // nil disables bot replies
	botUsername   string
	maxMessageLen int
}

func NewChatService(
	chats ChatRepo,
	messages MessageRepo,
	users UserRepo,
	notifications NotificationRepo,
	presence PresenceChecker,
	dispatcher *Dispatcher,
	tasks *Tasks,
) *ChatService {
	return &ChatService{
		chats:         chats,
		messages:      messages,
		users:         users,
		notifications: notifications,
		presence:      presence,
		dispatcher:    dispatcher,
		tasks:         tasks,
		maxMessageLen: 4000,
	}
}

func (s *ChatService) SetResponder(r ai.Responder, botUsername string) {
	s.responder = r
	s.botUsername = botUsername
}

func (s *ChatService) SetMaxMessageLen(n int) {
	if n > 0 {
		s.maxMessageLen = n
	}
}

// Authorize resolves the chat a connection wants to attach to. Private chats
// reject authenticated non-participants; unauthenticated connections pass
// the membership check, matching the socket contract.
func (s *ChatService) Authorize(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsPublic && userID != "" {
		ok, err := s.chats.IsParticipant(ctx, chatID, userID)
		if err != nil {
			return nil, fmt.Errorf("participant check: %w", err)
		}
		if !ok {
			return nil, domain.ErrNotParticipant
		}
	}
	return chat, nil
}

// Send runs the full message pipeline: persist, fan out to the room topic,
// and create a MESSAGE notification when the receiver is not watching the
// chat. Notification failures are logged, never surfaced to the sender.
func (s *ChatService) Send(ctx context.Context, chatID, senderID string, receiverID *string, content string) (*MessageEnvelope, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(content) > s.maxMessageLen {
		return nil, domain.ErrMessageTooLong
	}

	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	// Normalize the receiver before any business logic: explicit wins, then
	// the other participant of a private chat, else none (public chat).
	receiver := normalizeID(receiverID)
	if receiver == nil && !chat.IsPublic {
		receiver, err = s.otherParticipant(ctx, chatID, senderID)
		if err != nil {
			slog.Warn("resolve receiver failed", "chat", chatID, "err", err)
		}
	}

	msg, err := s.messages.Create(ctx, chatID, senderID, receiver, content)
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	env := s.envelope(ctx, msg)
	s.dispatcher.NotifyChat(chatID, env)

	if receiver != nil && *receiver != senderID && !s.presence.IsPresent(chatID, *receiver) {
		n := &domain.Notification{
			Type:        domain.NotificationMessage,
			RecipientID: *receiver,
			IssuerID:    senderID,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			slog.Error("create message notification failed",
				"chat", chatID, "recipient", *receiver, "err", err)
		} else {
			s.dispatcher.Notify(*receiver)
		}
	}

	if s.tasks != nil {
		s.tasks.Submit(func(bg context.Context) {
			s.handleMentions(bg, chatID, senderID, content)
		})
	}

	return &env, nil
}

// History returns messages strictly newer than after, oldest first.
func (s *ChatService) History(ctx context.Context, chatID string, after time.Time, limit int) ([]domain.Message, error) {
	if _, err := s.chats.Get(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messages.ListAfter(ctx, chatID, after, limit)
}

// PublicChat returns the lazily-created singleton public chat.
func (s *ChatService) PublicChat(ctx context.Context) (*domain.Chat, error) {
	return s.chats.GetPublic(ctx)
}

func (s *ChatService) Rooms(ctx context.Context, userID string) ([]domain.ChatRoom, error) {
	return s.chats.ListRoomsForUser(ctx, userID)
}

// CreateRoom returns the existing private chat for a pair, else creates one.
// The mutual-follow precondition is enforced upstream by the profile service.
func (s *ChatService) CreateRoom(ctx context.Context, userIDs []string) (*domain.Chat, error) {
	if len(userIDs) == 2 {
		if existing, err := s.chats.FindPrivateByPair(ctx, userIDs[0], userIDs[1]); err == nil {
			return existing, nil
		} else if err != domain.ErrChatNotFound {
			return nil, err
		}
	}
	return s.chats.CreatePrivate(ctx, userIDs)
}

// TouchLastSeen is fire-and-forget; the socket calls it on open and close.
func (s *ChatService) TouchLastSeen(ctx context.Context, userID string) {
	if err := s.users.TouchLastSeen(ctx, userID); err != nil {
		slog.Debug("touch last seen failed", "user", userID, "err", err)
	}
}

func (s *ChatService) envelope(ctx context.Context, msg *domain.Message) MessageEnvelope {
	env := MessageEnvelope{
		Type:       "new_message",
		ID:         msg.ID,
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}

	sender, err := s.users.Get(ctx, msg.SenderID)
	if err != nil {
		slog.Debug("load sender failed", "sender", msg.SenderID, "err", err)
		env.Sender = UserSummary{ID: msg.SenderID}
		return env
	}
	env.Sender = summarize(sender)
	return env
}

func (s *ChatService) otherParticipant(ctx context.Context, chatID, senderID string) (*string, error) {
	ids, err := s.chats.ListParticipantIDs(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id != senderID {
			other := id
			return &other, nil
		}
	}
	return nil, nil
}

// handleMentions runs on the side-effect queue: MENTION notifications for
// real users named in the content, plus an AI reply when the bot user is
// asked a question. Failures are logged and never reach the sender.
func (s *ChatService) handleMentions(ctx context.Context, chatID, senderID, content string) {
	seen := map[string]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(content, -1) {
		username := m[1]
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		mentioned, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			if err != domain.ErrUserNotFound {
				slog.Warn("mention lookup failed", "username", username, "err", err)
			}
			continue
		}
		if mentioned.ID == senderID {
			continue
		}

		n := &domain.Notification{
			Type:        domain.NotificationMention,
			RecipientID: mentioned.ID,
			IssuerID:    senderID,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			slog.Error("create mention notification failed",
				"recipient", mentioned.ID, "err", err)
			continue
		}
		s.dispatcher.Notify(mentioned.ID)

		if s.responder != nil && username == s.botUsername {
			s.botReply(ctx, chatID, mentioned, content)
		}
	}
}

func (s *ChatService) botReply(ctx context.Context, chatID string, bot *domain.User, content string) {
	question := strings.TrimSpace(mentionRe.ReplaceAllString(content, ""))
	if question == "" {
		return
	}

	reply, err := s.responder.GenerateReply(ctx, question)
	if err != nil {
		slog.Warn("ai reply failed", "chat", chatID, "err", err)
		return
	}

	// Screen the generated text; moderation errors fail open.
	if harmful, err := s.responder.Moderate(ctx, reply); err != nil {
		slog.Warn("ai moderation failed", "chat", chatID, "err", err)
	} else if harmful {
		slog.Warn("ai reply rejected by moderation", "chat", chatID)
		return
	}

	msg, err := s.messages.Create(ctx, chatID, bot.ID, nil, reply)
	if err != nil {
		slog.Error("persist ai reply failed", "chat", chatID, "err", err)
		return
	}
	s.dispatcher.NotifyChat(chatID, s.envelope(ctx, msg))
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
