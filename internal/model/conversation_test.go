package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, ConversationID("alice", "bob"), ConversationID("bob", "alice"))
	assert.Equal(t, "conv_alice_bob", ConversationID("bob", "alice"))

	pairs := [][2]string{
		{"user_1", "user_2"},
		{"zed", "amy"},
		{"a", "a"},
		{"42", "7"},
	}
	for _, p := range pairs {
		assert.Equal(t, ConversationID(p[0], p[1]), ConversationID(p[1], p[0]))
	}
}

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, "user_alice", UserRoom("alice"))
	assert.Equal(t, "conversation_conv_alice_bob", ConversationRoom(ConversationID("bob", "alice")))
}
