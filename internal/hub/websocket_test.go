package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/event"
	"github.com/tdiessongo25/peakcrews-chat/internal/model"
)

func setupRelay(t *testing.T) (*httptest.Server, *Hub, *stubStore) {
	t.Helper()
	store := &stubStore{}
	h := NewHub(store, nil, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r)
	}))

	t.Cleanup(func() {
		h.Stop()
		server.Close()
	})
	return server, h, store
}

func dialRelay(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, name string, payload interface{}) {
	t.Helper()
	ev, err := event.New(name, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ev))
}

func readEvent(t *testing.T, conn *websocket.Conn) event.WsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev event.WsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

// authAndJoin authenticates the connection and proves its conversation-room
// membership by reading back its own mark_read broadcast, so later sends
// cannot race the join.
func authAndJoin(t *testing.T, conn *websocket.Conn, userID, conversationID string) {
	t.Helper()

	sendEvent(t, conn, event.EventAuthenticate, event.AuthenticatePayload{UserID: userID})
	ev := readEvent(t, conn)
	require.Equal(t, event.EventAuthenticated, ev.Event)

	sendEvent(t, conn, event.EventJoinConversation, conversationID)
	sendEvent(t, conn, event.EventMarkRead, event.MarkReadPayload{
		ConversationID: conversationID,
		UserID:         userID,
	})
	ev = readEvent(t, conn)
	require.Equal(t, event.EventMessagesRead, ev.Event)
}

func TestRelayEndToEnd(t *testing.T) {
	server, h, store := setupRelay(t)

	conversationID := model.ConversationID("alice", "bob")

	alice := dialRelay(t, server)
	authAndJoin(t, alice, "alice", conversationID)

	bob := dialRelay(t, server)
	authAndJoin(t, bob, "bob", conversationID)

	// Bob's join handshake broadcast reaches alice as well; consume it.
	ev := readEvent(t, alice)
	require.Equal(t, event.EventMessagesRead, ev.Event)

	assert.Equal(t, 2, h.Stats().Connections)

	sendEvent(t, alice, event.EventSendMessage, event.SendMessagePayload{
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "hi",
	})

	// Alice gets only the ack.
	ev = readEvent(t, alice)
	require.Equal(t, event.EventMessageSent, ev.Event)
	ack := decode[event.MessageSentPayload](t, ev)
	assert.Regexp(t, `^msg_\d+$`, ack.MessageID)

	// Bob gets the room fan-out and the personal-room copy.
	first := readEvent(t, bob)
	second := readEvent(t, bob)
	require.ElementsMatch(t,
		[]string{event.EventNewMessage, event.EventMessageReceived},
		[]string{first.Event, second.Event},
	)
	msg := decode[event.NewMessagePayload](t, first)
	assert.Equal(t, "hi", msg.Message.Content)
	assert.Equal(t, "conv_alice_bob", msg.ConversationID)

	require.Len(t, store.savedMessages(), 1)

	// Typing reaches bob but is never echoed to alice.
	sendEvent(t, alice, event.EventTypingStart, event.TypingPayload{
		ConversationID: conversationID,
		UserID:         "alice",
	})
	ev = readEvent(t, bob)
	require.Equal(t, event.EventUserTyping, ev.Event)
	assert.True(t, decode[event.UserTypingPayload](t, ev).IsTyping)

	// Closing bob's socket tears everything down server-side.
	require.NoError(t, bob.Close())
	require.Eventually(t, func() bool {
		return h.Stats().Connections == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRelayRejectsMalformedPayload(t *testing.T) {
	server, _, store := setupRelay(t)

	conn := dialRelay(t, server)
	sendEvent(t, conn, event.EventAuthenticate, event.AuthenticatePayload{UserID: "alice"})
	ev := readEvent(t, conn)
	require.Equal(t, event.EventAuthenticated, ev.Event)

	sendEvent(t, conn, event.EventSendMessage, event.SendMessagePayload{
		SenderID:   "alice",
		ReceiverID: "bob",
		// no content
	})

	ev = readEvent(t, conn)
	require.Equal(t, event.EventMessageError, ev.Event)
	assert.NotEmpty(t, decode[event.ErrorPayload](t, ev).Error)
	assert.Empty(t, store.savedMessages())
}
