package delivery

import (
	"errors"
	"net/http"

	"subwatch-backend/internal/chat/usecase"
	"subwatch-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles per-post AI chat HTTP requests
type ChatHandler struct {
	chatUsecase   usecase.ChatUsecase
	suggestWorker *usecase.SuggestWorkerService
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, suggestWorker *usecase.SuggestWorkerService) *ChatHandler {
	return &ChatHandler{
		chatUsecase:   chatUsecase,
		suggestWorker: suggestWorker,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	Model   string `json:"model"`
}

// Chat runs one chat turn about a post
// POST /api/posts/:id/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.chatUsecase.Chat(c.Request.Context(), userID, postID, req.Message, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, usecase.ErrNoAIAccess):
			c.JSON(http.StatusForbidden, gin.H{
				"code":  "NO_AI_ACCESS",
				"error": "no AI access: store an API key or purchase credits",
			})
		case errors.Is(err, ai.ErrInvalidKey):
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":  "INVALID_PROVIDER_KEY",
				"error": "the provider rejected the API key",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI provider unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistory returns the chat history for a post
// GET /api/posts/:id/chat
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	messages, err := h.chatUsecase.GetHistory(userID, postID)
	if err != nil {
		if errors.Is(err, usecase.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Suggest queues background generation of a suggested reply; the result
// arrives over SSE as "suggestion_ready"
// POST /api/posts/:id/suggest
func (h *ChatHandler) Suggest(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	if !h.suggestWorker.QueueJob(usecase.SuggestJob{UserID: userID, PostID: postID}) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "suggestion queue full, try again later"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
