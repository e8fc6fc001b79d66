package event

import "encoding/json"

// Client -> server event types
const (
	EventAuthenticate      = "authenticate"
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"
	EventMarkRead          = "mark_read"
)

// Server -> client event types
const (
	EventAuthenticated   = "authenticated"
	EventNewMessage      = "new_message"
	EventMessageReceived = "message_received"
	EventMessageSent     = "message_sent"
	EventMessageError    = "message_error"
	EventUserTyping      = "user_typing"
	EventMessagesRead    = "messages_read"
)

// WsEvent is the wire envelope for every socket event in both directions.
// Payload stays raw until the handler for the event type decodes it.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New wraps a typed payload into a wire envelope.
func New(name string, payload interface{}) (WsEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: name, Payload: raw}, nil
}
