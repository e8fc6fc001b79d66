package hub

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/event"
)

// tuning parameters
var (
	writeWait      = 10 * time.Second    // time allowed to write a message to the peer
	pongWait       = 20 * time.Second    // time allowed to read the next pong from the peer
	pingInterval   = (pongWait * 9) / 10 // send pings to peer with this period
	maxMessageSize = 64 * 1024           // max inbound message size (64KB)
	sendBufSize    = 256                 // per-connection outbound buffer size
	closeGrace     = 5 * time.Second     // force-close window after shutdown starts
)

// Client is one live socket connection. A user may hold several clients at
// once (multi-device); the user binding is applied by the authenticate event
// and never unset for the life of the connection.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	egress chan event.WsEvent
	logger *zap.Logger

	userMu sync.RWMutex
	userID string

	ctx            context.Context
	cancel         context.CancelFunc
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
}

func newClient(conn *websocket.Conn, h *Hub, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()

	return &Client{
		ID:         id,
		hub:        h,
		conn:       conn,
		egress:     make(chan event.WsEvent, sendBufSize),
		logger:     logger.With(zap.String("connection_id", id)),
		ctx:        ctx,
		cancel:     cancel,
		connClosed: make(chan struct{}),
	}
}

// UserID returns the bound user id, or "" before authentication.
func (c *Client) UserID() string {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	return c.userID
}

// bindUser applies the one-way user binding. Returns false when the client
// is already bound; the existing binding is kept either way.
func (c *Client) bindUser(userID string) bool {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	if c.userID != "" {
		return false
	}
	c.userID = userID
	return true
}

func (c *Client) readPump() {
	defer c.hub.disconnect(c)

	c.conn.SetReadLimit(int64(maxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Debug("client disconnected")
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.logger.Debug("read deadline exceeded, closing connection")
			} else {
				c.logger.Warn("error reading from client", zap.Error(err))
			}
			return
		}

		var ev event.WsEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.hub.chat.sendError(c, "malformed event")
			continue
		}

		// Events from one connection are handled serially in this loop, so a
		// client's authenticate can never race its first send. Independent
		// connections run their own loops concurrently.
		c.hub.handleEvent(ev, c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
			return
		case ev := <-c.egress:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Warn("write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// trySend enqueues an event without blocking. A full egress buffer or a
// closed client drops the event: delivery is at-most-once and a slow
// consumer must never stall fan-out to other members.
func (c *Client) trySend(ev event.WsEvent) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.egress <- ev:
		return true
	default:
		return false
	}
}

// Close tears the client down exactly once. The write pump owns the socket
// close; a grace timer force-closes it if the pump never drains.
func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()

		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(closeGrace):
				_ = c.conn.Close()
				c.logger.Warn("force closed connection after grace period")
			}
		}()
	})
}
