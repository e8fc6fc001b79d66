package event

import "github.com/tdiessongo25/peakcrews-chat/internal/model"

// AuthenticatePayload binds a user identity to the connection.
type AuthenticatePayload struct {
	UserID string `json:"userId"`
}

// SendMessagePayload carries a direct message from the sender to one receiver.
type SendMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	JobID      string `json:"jobId,omitempty"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
}

// TypingPayload is shared by typing_start and typing_stop.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type AuthenticatedPayload struct {
	Success bool `json:"success"`
}

// NewMessagePayload is sent both as new_message (conversation room) and
// message_received (receiver's personal room).
type NewMessagePayload struct {
	Message        model.Message `json:"message"`
	ConversationID string        `json:"conversationId"`
}

type MessageSentPayload struct {
	MessageID string `json:"messageId"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type MessagesReadPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}
