package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/model"
)

type conversationRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

type ConversationRepository interface {
	UpsertFromMessage(ctx context.Context, msg *model.Message) error
	ListByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
}

func NewConversationRepository(mongoDB *mongo.Database, collectionName string, logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		collection: mongoDB.Collection(collectionName),
		logger:     logger,
	}
}

// UpsertFromMessage creates or refreshes the conversation document keyed by
// the message's resolver-derived conversation id: participants, last-message
// preview and recency.
func (r *conversationRepository) UpsertFromMessage(ctx context.Context, msg *model.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if msg.ConversationID == "" {
		return ErrInvalidConversationID
	}

	ctx, cancel := r.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	set := bson.M{
		"participant_ids": []string{msg.SenderID, msg.ReceiverID},
		"last_message": model.LastMessage{
			MessageID: msg.MessageID,
			Content:   msg.Content,
			SenderID:  msg.SenderID,
			SentAt:    msg.CreatedAt,
		},
		"last_message_at": msg.CreatedAt,
		"updated_at":      msg.CreatedAt,
	}
	if msg.JobID != "" {
		set["job_id"] = msg.JobID
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": msg.CreatedAt},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": msg.ConversationID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.Error("conversation upsert failed",
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err),
		)
		return fmt.Errorf("upsert conversation failed: %w", err)
	}

	return nil
}

// ListByUser returns the user's conversations, most recent first.
func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID: cannot be empty")
	}

	ctx, cancel := r.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"last_message_at": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"participant_ids": userID}, opts)
	if err != nil {
		r.logger.Error("failed to query conversations", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []model.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		r.logger.Error("failed to decode conversations", zap.Error(err))
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}

	r.logger.Debug("conversations listed",
		zap.String("user_id", userID),
		zap.Int("count", len(conversations)),
	)
	return conversations, nil
}

// Get fetches one conversation document; (nil, nil) when it does not exist.
func (r *conversationRepository) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, ErrInvalidConversationID
	}

	ctx, cancel := r.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var conversation model.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		r.logger.Error("failed to fetch conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	return &conversation, nil
}

func (r *conversationRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
