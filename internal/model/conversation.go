package model

import "time"

// ConversationID derives the canonical conversation key for a participant
// pair. The pair is sorted lexicographically so both sides compute the same
// key: ConversationID(a, b) == ConversationID(b, a). This is what lets two
// clients land in the same room without a persisted conversation lookup.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "conv_" + a + "_" + b
}

// UserRoom is the personal notification room every authenticated connection
// of a user joins.
func UserRoom(userID string) string {
	return "user_" + userID
}

// ConversationRoom is the fan-out room for one conversation.
func ConversationRoom(conversationID string) string {
	return "conversation_" + conversationID
}

// Conversation is the MongoDB document backing the history API. Its _id is
// the resolver-derived conversation key, not an ObjectID.
type Conversation struct {
	ID             string       `json:"id" bson:"_id"`
	ParticipantIDs []string     `json:"participantIds" bson:"participant_ids"`
	JobID          string       `json:"jobId,omitempty" bson:"job_id,omitempty"`
	LastMessage    *LastMessage `json:"lastMessage" bson:"last_message"`
	LastMessageAt  time.Time    `json:"lastMessageAt" bson:"last_message_at"`
	CreatedAt      time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updated_at"`
}

// LastMessage is the preview stored on the conversation document.
type LastMessage struct {
	MessageID string    `json:"messageId" bson:"message_id"`
	Content   string    `json:"content" bson:"content"`
	SenderID  string    `json:"senderId" bson:"sender_id"`
	SentAt    time.Time `json:"sentAt" bson:"sent_at"`
}
