package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/tdiessongo25/peakcrews-chat/internal/configuration"
)

func ChatRouters(router *gin.Engine, container *configuration.Container) {
	chatRoute := router.Group("/api")
	{
		chatRoute.GET("/conversations", container.ConversationHandler.ListConversations)
		chatRoute.GET("/conversations/:conversationId", container.ConversationHandler.GetConversation)
		chatRoute.GET("/conversations/:conversationId/messages", container.ConversationHandler.ListMessages)
		chatRoute.POST("/conversations/:conversationId/read", container.ConversationHandler.MarkRead)
	}
}
