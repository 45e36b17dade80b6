package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opencircle/social-service/internal/bus"
	"github.com/opencircle/social-service/internal/domain"
	"github.com/opencircle/social-service/internal/security"
	"github.com/opencircle/social-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ChatSvc interface {
	Authorize(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	Send(ctx context.Context, chatID, senderID string, receiverID *string, content string) (*service.MessageEnvelope, error)
	TouchLastSeen(ctx context.Context, userID string)
}

type Registry interface {
	Join(chatID, userID string)
	Leave(chatID, userID string)
}

type Server struct {
	upgrader websocket.Upgrader
	bus      *bus.Bus
	registry Registry
	chatSvc  ChatSvc
	verifier security.Verifier

	pingEvery time.Duration
}

func NewServer(b *bus.Bus, registry Registry, chat ChatSvc, verifier security.Verifier) *Server {
	return &Server{
		bus:      b,
		registry: registry,
		chatSvc:  chat,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// Chat endpoint: GET /ws/chat/{chatId}?token=...
// The token is optional: a failed verification downgrades the connection to
// unauthenticated instead of rejecting it.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatId")
	if chatID == "" {
		http.Error(w, "missing chat id", http.StatusBadRequest)
		return
	}

	var userID string
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		uid, err := s.verifier.VerifyToken(token)
		if err != nil {
			slog.Warn("ws token verification failed, continuing unauthenticated",
				"chat", chatID, "err", err)
		} else {
			userID = uid
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}
	c := newWsConn(conn)

	ctx := r.Context()
	if _, err := s.chatSvc.Authorize(ctx, chatID, userID); err != nil {
		switch err {
		case domain.ErrChatNotFound:
			_ = c.CloseWithReason(websocket.ClosePolicyViolation, CloseReasonNotFound)
		case domain.ErrNotParticipant:
			_ = c.CloseWithReason(websocket.ClosePolicyViolation, CloseReasonForbidden)
		default:
			slog.Error("ws authorize failed", "chat", chatID, "err", err)
			_ = c.CloseWithReason(websocket.CloseInternalServerErr, "internal error")
		}
		return
	}

	chatTopic := bus.ChatTopic(chatID)
	s.bus.Subscribe(chatTopic, c)

	var userTopic string
	if userID != "" {
		userTopic = bus.UserTopic(userID)
		s.bus.Subscribe(userTopic, c)
		s.registry.Join(chatID, userID)
		s.chatSvc.TouchLastSeen(ctx, userID)
	}

	go s.writeLoop(ctx, c)
	s.readLoop(ctx, c, chatID, userID)

	// Registry cleanup runs before the connection counts as closed, so a
	// gone subscriber cannot keep suppressing notifications.
	s.bus.Unsubscribe(chatTopic, c)
	if userID != "" {
		s.bus.Unsubscribe(userTopic, c)
		s.registry.Leave(chatID, userID)
		s.chatSvc.TouchLastSeen(context.WithoutCancel(ctx), userID)
	}

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "chat", chatID, "user", userID, "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn, chatID, authUserID string) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var in InboundMessage
		if err := json.Unmarshal(data, &in); err != nil {
			slog.Debug("ws malformed frame dropped", "chat", chatID)
			continue
		}

		// Authenticated identity wins; unauthenticated sockets must say who
		// is sending. Neither means the frame is dropped silently.
		senderID := authUserID
		if senderID == "" {
			senderID = strings.TrimSpace(in.SenderID)
		}
		if senderID == "" {
			slog.Debug("ws frame without sender dropped", "chat", chatID)
			continue
		}

		env, err := s.chatSvc.Send(ctx, chatID, senderID, in.ReceiverID, in.Content)
		if err != nil {
			// Availability over delivery: the socket stays open.
			slog.Warn("ws message send failed", "chat", chatID, "sender", senderID, "err", err)
			continue
		}

		// The room topic already delivered to subscribers; this direct send
		// guarantees the sender sees its own message.
		if err := c.Send(env); err != nil {
			slog.Debug("ws echo to sender failed", "chat", chatID, "err", err)
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}
