package delivery

import (
	"net/http"

	"subwatch-backend/internal/subreddit/usecase"

	"github.com/gin-gonic/gin"
)

// SubredditHandler handles subscription HTTP requests
type SubredditHandler struct {
	subredditUsecase usecase.SubredditUsecase
}

func NewSubredditHandler(subredditUsecase usecase.SubredditUsecase) *SubredditHandler {
	return &SubredditHandler{
		subredditUsecase: subredditUsecase,
	}
}

type subscribeRequest struct {
	Name string `json:"name" binding:"required"`
}

type refreshIntervalRequest struct {
	Name    string `json:"name" binding:"required"`
	Minutes int    `json:"minutes" binding:"required,min=1"`
}

// Subscribe adds a subreddit to the user's watch list
// POST /api/subreddits
func (h *SubredditHandler) Subscribe(c *gin.Context) {
	userID := c.GetString("userID")

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.subredditUsecase.Subscribe(userID, req.Name)
	if err != nil {
		if err.Error() == "already subscribed" {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// GetSubscriptions lists the user's subscriptions
// GET /api/subreddits
func (h *SubredditHandler) GetSubscriptions(c *gin.Context) {
	userID := c.GetString("userID")

	subs, err := h.subredditUsecase.GetSubscriptions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// Unsubscribe removes a subscription
// DELETE /api/subreddits/:id
func (h *SubredditHandler) Unsubscribe(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.subredditUsecase.Unsubscribe(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// SetRefreshInterval changes how often a subreddit is refreshed
// PUT /api/subreddits/refresh-interval
func (h *SubredditHandler) SetRefreshInterval(c *gin.Context) {
	var req refreshIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subredditUsecase.SetRefreshInterval(req.Name, req.Minutes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
