package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

// wsConn serializes writes on one socket; gorilla allows a single concurrent
// writer. It satisfies bus.Subscriber.
type wsConn struct {
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(v any) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(v)
}

// CloseWithReason writes a close frame so clients can tell a rejection from
// a network drop, then closes.
func (c *wsConn) CloseWithReason(code int, reason string) error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	return c.Close()
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
