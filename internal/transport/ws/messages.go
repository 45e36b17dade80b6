package ws

// InboundMessage is a chat frame from the client. SenderID is honored only
// for unauthenticated sockets; authenticated identity always wins.
type InboundMessage struct {
	Content    string  `json:"content"`
	ChatID     string  `json:"chatId"`
	ReceiverID *string `json:"receiverId,omitempty"`
	SenderID   string  `json:"senderId,omitempty"`
}

// Close reasons sent before terminating a rejected connection.
const (
	CloseReasonNotFound  = "chat not found"
	CloseReasonForbidden = "forbidden"
	CloseReasonAuth      = "authentication required"
)
