package hub

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/event"
	"github.com/tdiessongo25/peakcrews-chat/internal/model"
)

// MessageStore is the persistence collaborator invoked around event
// handling. The relay itself owns no durable state; both calls are
// best-effort from its point of view.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *model.Message) error
	MarkRead(ctx context.Context, conversationID, userID string) error
}

// Hub owns the connection registry and room membership and routes every
// inbound socket event through the chat handler.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	chat     *ChatHandler
	upgrader websocket.Upgrader
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// Stats is the snapshot reported by the health endpoint.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

func NewHub(store MessageStore, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
		logger:   logger.Named("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		ctx:    ctx,
		cancel: cancel,
	}
	h.chat = newChatHandler(h, store, h.logger)

	return h
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(origin, o) {
				return true
			}
		}
		return false
	}
}

// ServeWS upgrades the HTTP request and registers the connection. The
// connection carries no identity yet; binding happens via the authenticate
// event.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, h, h.logger)
	h.registry.Add(c)
	h.logger.Info("connection registered", zap.String("connection_id", c.ID))

	go c.readPump()
	go c.writePump()
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventAuthenticate:
		h.chat.handleAuthenticate(ev, c)
	case event.EventJoinConversation:
		h.chat.handleJoinConversation(ev, c)
	case event.EventLeaveConversation:
		h.chat.handleLeaveConversation(ev, c)
	case event.EventSendMessage:
		h.chat.handleSendMessage(ev, c)
	case event.EventTypingStart:
		h.chat.handleTyping(ev, c, true)
	case event.EventTypingStop:
		h.chat.handleTyping(ev, c, false)
	case event.EventMarkRead:
		h.chat.handleMarkRead(ev, c)
	default:
		h.logger.Warn("unknown event type",
			zap.String("event", ev.Event),
			zap.String("connection_id", c.ID),
		)
	}
}

// joinRoom adds the connection to a room, then undoes the join if the
// connection was torn down concurrently. disconnect removes the connection
// from the registry before sweeping its rooms, so a membership that lands
// after that sweep (a join racing Stop) is caught here instead of leaking.
func (h *Hub) joinRoom(c *Client, roomKey string) {
	h.rooms.Join(c, roomKey)
	if h.registry.Get(c.ID) == nil {
		h.rooms.Leave(c.ID, roomKey)
	}
}

// disconnect removes the connection from the registry and from every room
// it joined, then tears the client down. Safe to call more than once and
// for connections that never authenticated.
func (h *Hub) disconnect(c *Client) {
	if h.registry.Remove(c.ID) == nil {
		return
	}
	h.rooms.LeaveAll(c.ID)
	c.Close()
	h.logger.Info("connection removed", zap.String("connection_id", c.ID))
}

// Stats reports the live connection count and the number of non-empty rooms.
func (h *Hub) Stats() Stats {
	return Stats{
		Connections: h.registry.Len(),
		Rooms:       h.rooms.Count(),
	}
}

// Stop closes every live connection and stops accepting events.
func (h *Hub) Stop() {
	h.cancel()
	for _, c := range h.registry.All() {
		h.disconnect(c)
	}
}
