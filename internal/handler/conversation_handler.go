package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tdiessongo25/peakcrews-chat/internal/service"
)

type ConversationHandler interface {
	ListConversations(c *gin.Context)
	GetConversation(c *gin.Context)
	ListMessages(c *gin.Context)
	MarkRead(c *gin.Context)
}

type conversationHandler struct {
	service service.ChatService
}

func NewConversationHandler(service service.ChatService) ConversationHandler {
	return &conversationHandler{
		service: service,
	}
}

func (h *conversationHandler) ListConversations(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "userId is required",
		})
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list conversations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
	})
}

func (h *conversationHandler) GetConversation(c *gin.Context) {
	conversationID := c.Param("conversationId")

	conversation, err := h.service.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get conversation",
		})
		return
	}
	if conversation == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Conversation not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conversation,
	})
}

func (h *conversationHandler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	page := c.DefaultQuery("page", "1")
	pageNumber, err := strconv.ParseInt(page, 10, 64)
	if err != nil || pageNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid page number",
		})
		return
	}

	msgs, err := h.service.ListMessages(c.Request.Context(), conversationID, pageNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
	})
}

// MarkRead is the REST twin of the socket mark_read event: it persists the
// read transition only, no fan-out.
func (h *conversationHandler) MarkRead(c *gin.Context) {
	conversationID := c.Param("conversationId")

	var body struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "userId is required",
		})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), conversationID, body.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark conversation read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
