package hub

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/event"
	"github.com/tdiessongo25/peakcrews-chat/internal/model"
)

// ChatHandler processes chat events and drives fan-out. Persistence goes
// through the MessageStore collaborator best-effort: a store failure is
// logged and never blocks live delivery to connected recipients.
type ChatHandler struct {
	hub    *Hub
	store  MessageStore
	logger *zap.Logger
}

func newChatHandler(h *Hub, store MessageStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		hub:    h,
		store:  store,
		logger: logger,
	}
}

// handleAuthenticate binds the user to the connection and joins the user's
// personal room. Idempotent per connection: every attempt is acked, the
// first binding wins, and a later attempt with a different user id is
// ignored.
func (ch *ChatHandler) handleAuthenticate(ev event.WsEvent, c *Client) {
	var p event.AuthenticatePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil || p.UserID == "" {
		ch.sendError(c, "userId is required")
		return
	}

	_, applied := ch.hub.registry.Bind(c.ID, p.UserID)
	if applied {
		ch.hub.joinRoom(c, model.UserRoom(p.UserID))
		ch.logger.Info("user authenticated",
			zap.String("connection_id", c.ID),
			zap.String("user_id", p.UserID),
		)
	} else if bound := c.UserID(); bound != "" && bound != p.UserID {
		ch.logger.Warn("rebind attempt ignored",
			zap.String("connection_id", c.ID),
			zap.String("bound_user_id", bound),
			zap.String("requested_user_id", p.UserID),
		)
	}

	ch.reply(c, event.EventAuthenticated, event.AuthenticatedPayload{Success: true})
}

func (ch *ChatHandler) handleJoinConversation(ev event.WsEvent, c *Client) {
	var conversationID string
	if err := json.Unmarshal(ev.Payload, &conversationID); err != nil || conversationID == "" {
		ch.sendError(c, "conversationId is required")
		return
	}

	ch.hub.joinRoom(c, model.ConversationRoom(conversationID))
	ch.logger.Debug("joined conversation",
		zap.String("connection_id", c.ID),
		zap.String("conversation_id", conversationID),
	)
}

func (ch *ChatHandler) handleLeaveConversation(ev event.WsEvent, c *Client) {
	var conversationID string
	if err := json.Unmarshal(ev.Payload, &conversationID); err != nil || conversationID == "" {
		ch.sendError(c, "conversationId is required")
		return
	}

	ch.hub.rooms.Leave(c.ID, model.ConversationRoom(conversationID))
}

// handleSendMessage runs the send transition: construct the message, persist
// best-effort, fan out new_message to the conversation room and
// message_received to the receiver's personal room (both excluding the
// originating connection), then ack the sender with message_sent.
func (ch *ChatHandler) handleSendMessage(ev event.WsEvent, c *Client) {
	var p event.SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		ch.sendError(c, "invalid send_message payload")
		return
	}
	if p.SenderID == "" || p.ReceiverID == "" || p.Content == "" {
		ch.sendError(c, "senderId, receiverId and content are required")
		return
	}

	msgType := p.Type
	if msgType == "" {
		msgType = model.TypeText
	}

	// The wire id is timestamp-derived and therefore not unique under
	// concurrent sends within one millisecond. That weak guarantee is part
	// of the wire contract; the mongo _id carries real uniqueness.
	now := time.Now()
	msg := model.Message{
		MessageID:      fmt.Sprintf("msg_%d", now.UnixMilli()),
		ConversationID: model.ConversationID(p.SenderID, p.ReceiverID),
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		JobID:          p.JobID,
		Content:        p.Content,
		Type:           msgType,
		Status:         model.StatusSent,
		CreatedAt:      now,
	}

	if ch.store != nil {
		if err := ch.store.SaveMessage(ch.hub.ctx, &msg); err != nil {
			ch.logger.Error("message persistence failed, delivering live anyway",
				zap.String("message_id", msg.MessageID),
				zap.String("conversation_id", msg.ConversationID),
				zap.Error(err),
			)
		}
	}

	payload := event.NewMessagePayload{Message: msg, ConversationID: msg.ConversationID}

	out, err := event.New(event.EventNewMessage, payload)
	if err != nil {
		ch.sendError(c, "failed to construct message")
		return
	}
	ch.broadcast(model.ConversationRoom(msg.ConversationID), out, c.ID)

	received, err := event.New(event.EventMessageReceived, payload)
	if err != nil {
		ch.sendError(c, "failed to construct message")
		return
	}
	ch.broadcast(model.UserRoom(p.ReceiverID), received, c.ID)

	ch.reply(c, event.EventMessageSent, event.MessageSentPayload{MessageID: msg.MessageID})
}

// handleTyping broadcasts user_typing to every other member of the
// conversation room, never back to the originating connection. Typing state
// is ephemeral: nothing is stored and a connection that drops mid-typing
// leaves the stale flag at its peers (no synthetic stop is emitted).
func (ch *ChatHandler) handleTyping(ev event.WsEvent, c *Client, isTyping bool) {
	var p event.TypingPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ConversationID == "" || p.UserID == "" {
		ch.sendError(c, "conversationId and userId are required")
		return
	}

	out, err := event.New(event.EventUserTyping, event.UserTypingPayload{
		UserID:   p.UserID,
		IsTyping: isTyping,
	})
	if err != nil {
		ch.sendError(c, "failed to construct typing event")
		return
	}

	ch.broadcast(model.ConversationRoom(p.ConversationID), out, c.ID)
}

// handleMarkRead persists the read transition best-effort, then broadcasts
// messages_read to the full room. Unlike typing, the reader's own connection
// is included: every participant gets live confirmation.
func (ch *ChatHandler) handleMarkRead(ev event.WsEvent, c *Client) {
	var p event.MarkReadPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ConversationID == "" || p.UserID == "" {
		ch.sendError(c, "conversationId and userId are required")
		return
	}

	if ch.store != nil {
		if err := ch.store.MarkRead(ch.hub.ctx, p.ConversationID, p.UserID); err != nil {
			ch.logger.Error("mark read persistence failed, broadcasting anyway",
				zap.String("conversation_id", p.ConversationID),
				zap.String("user_id", p.UserID),
				zap.Error(err),
			)
		}
	}

	out, err := event.New(event.EventMessagesRead, event.MessagesReadPayload{
		UserID:         p.UserID,
		ConversationID: p.ConversationID,
	})
	if err != nil {
		ch.sendError(c, "failed to construct read event")
		return
	}

	ch.broadcast(model.ConversationRoom(p.ConversationID), out, "")
}

// broadcast pushes one event to every current member of the room, skipping
// exceptConnID when set. Enqueueing is non-blocking; members with a full
// egress buffer miss the event.
func (ch *ChatHandler) broadcast(roomKey string, ev event.WsEvent, exceptConnID string) {
	for _, m := range ch.hub.rooms.Members(roomKey) {
		if m.ID == exceptConnID {
			continue
		}
		if !m.trySend(ev) {
			ch.logger.Warn("egress full, dropping event",
				zap.String("connection_id", m.ID),
				zap.String("room", roomKey),
				zap.String("event", ev.Event),
			)
		}
	}
}

// reply sends an event to the originating connection only.
func (ch *ChatHandler) reply(c *Client, name string, payload interface{}) {
	out, err := event.New(name, payload)
	if err != nil {
		ch.logger.Error("failed to marshal reply", zap.String("event", name), zap.Error(err))
		return
	}
	c.trySend(out)
}

func (ch *ChatHandler) sendError(c *Client, msg string) {
	ch.reply(c, event.EventMessageError, event.ErrorPayload{Error: msg})
}
