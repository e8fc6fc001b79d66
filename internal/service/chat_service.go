package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/db"
	"github.com/tdiessongo25/peakcrews-chat/internal/model"
	"github.com/tdiessongo25/peakcrews-chat/internal/repo"
)

// ChatService is the persistence facade shared by the REST handlers and the
// hub (it satisfies the hub's MessageStore collaborator).
type ChatService interface {
	SaveMessage(ctx context.Context, msg *model.Message) error
	MarkRead(ctx context.Context, conversationID, userID string) error
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error)
}

type chatService struct {
	messages      repo.MessageRepository
	conversations repo.ConversationRepository
	logger        *zap.Logger
}

func NewChatService(messages repo.MessageRepository, conversations repo.ConversationRepository, logger *zap.Logger) ChatService {
	return &chatService{
		messages:      messages,
		conversations: conversations,
		logger:        logger,
	}
}

// SaveMessage appends the message and refreshes the conversation document so
// a client reloading history sees the send.
func (s *chatService) SaveMessage(ctx context.Context, msg *model.Message) error {
	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return err
	}

	if err := s.conversations.UpsertFromMessage(ctx, msg); err != nil {
		return fmt.Errorf("message stored but conversation refresh failed: %w", err)
	}
	return nil
}

func (s *chatService) MarkRead(ctx context.Context, conversationID, userID string) error {
	modified, err := s.messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	s.logger.Debug("messages marked read",
		zap.String("conversation_id", conversationID),
		zap.String("user_id", userID),
		zap.Int64("modified", modified),
	)
	return nil
}

func (s *chatService) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}

func (s *chatService) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return s.conversations.Get(ctx, conversationID)
}

func (s *chatService) ListMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	return s.messages.ListMessages(ctx, conversationID, page)
}
