package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message status lifecycle: sent -> read. "delivered" is implicit in the
// live push and never stored separately.
const (
	StatusSent = "sent"
	StatusRead = "read"
)

// Default message type when the sender declares none.
const TypeText = "text"

// Message is a chat message, used both as the wire payload and as the
// MongoDB document. MessageID is the wire identifier (msg_<unix-millis>);
// the mongo ObjectID is storage-only and never leaves the repo layer.
type Message struct {
	ID             primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	MessageID      string             `json:"id" bson:"message_id"`
	ConversationID string             `json:"conversationId" bson:"conversation_id"`
	SenderID       string             `json:"senderId" bson:"sender_id"`
	ReceiverID     string             `json:"receiverId" bson:"receiver_id"`
	JobID          string             `json:"jobId,omitempty" bson:"job_id,omitempty"`
	Content        string             `json:"content" bson:"content"`
	Type           string             `json:"type" bson:"type"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
}
