package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opencircle/social-service/internal/bus"

	"github.com/gorilla/websocket"
)

// Notifications endpoint: GET /ws/notifications?token=...
// Unlike the chat socket there is nothing to serve an anonymous client, so
// auth failure closes the connection with a reason frame.
func (s *Server) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))

	var userID string
	if token != "" {
		if uid, err := s.verifier.VerifyToken(token); err == nil {
			userID = uid
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}
	c := newWsConn(conn)

	if userID == "" {
		_ = c.CloseWithReason(websocket.ClosePolicyViolation, CloseReasonAuth)
		return
	}

	topic := bus.UserTopic(userID)
	s.bus.Subscribe(topic, c)

	go s.writeLoop(r.Context(), c)
	s.drainLoop(c)

	s.bus.Unsubscribe(topic, c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "user", userID, "err", err)
	}
}

// drainLoop discards inbound frames; the notification socket is push-only.
// It returns when the peer goes away or stops answering pings.
func (s *Server) drainLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 10)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
