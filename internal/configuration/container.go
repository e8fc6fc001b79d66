package configuration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/db"
	"github.com/tdiessongo25/peakcrews-chat/internal/handler"
	"github.com/tdiessongo25/peakcrews-chat/internal/hub"
	"github.com/tdiessongo25/peakcrews-chat/internal/model"
	"github.com/tdiessongo25/peakcrews-chat/internal/repo"
	"github.com/tdiessongo25/peakcrews-chat/internal/service"
)

type Container struct {
	Config              Config
	Logger              *zap.Logger
	Hub                 *hub.Hub
	ConversationHandler handler.ConversationHandler
	StatusHandler       handler.StatusHandler

	// private - for cleanup
	mongoDB *mongo.Database
}

func BuildContainer(cfg Config) (*Container, error) {
	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	mongoDB, err := db.OpenConnection(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](mongoDB, cfg.Mongo.MessagesCollection),
		logger,
	)
	conversationRepo := repo.NewConversationRepository(mongoDB, cfg.Mongo.ConversationsCollection, logger)

	chatService := service.NewChatService(messageRepo, conversationRepo, logger)

	relayHub := hub.NewHub(chatService, cfg.Server.AllowedOrigins, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Hub:                 relayHub,
		ConversationHandler: handler.NewConversationHandler(chatService),
		StatusHandler:       handler.NewStatusHandler(relayHub),
		mongoDB:             mongoDB,
	}, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	if c.mongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoDB.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close mongo connection: %w", err)
		}
	}

	return nil
}
