package delivery

import (
	"net/http"
	"strconv"

	postdomain "subwatch-backend/internal/post/domain"
	"subwatch-backend/internal/post/repository"
	"subwatch-backend/internal/post/usecase"

	"github.com/gin-gonic/gin"
)

// PostHandler handles post feed HTTP requests
type PostHandler struct {
	postUsecase usecase.PostUsecase
}

func NewPostHandler(postUsecase usecase.PostUsecase) *PostHandler {
	return &PostHandler{
		postUsecase: postUsecase,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type saveResponseRequest struct {
	Response string `json:"response" binding:"required"`
}

// GetFeed returns the user's post feed with optional filters
// GET /api/posts?status=new&subreddit=golang&tag=<id>&limit=50&offset=0
func (h *PostHandler) GetFeed(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.PostFilter{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		s := postdomain.UserPostStatus(status)
		filter.Status = &s
	}
	if subreddit := c.Query("subreddit"); subreddit != "" {
		filter.Subreddit = &subreddit
	}
	if tagID := c.Query("tag"); tagID != "" {
		filter.TagID = &tagID
	}

	items, total, err := h.postUsecase.GetFeed(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": items,
		"total": total,
	})
}

// GetPost returns one post with the user's association
// GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	item, err := h.postUsecase.GetPost(userID, postID)
	if err != nil {
		if err.Error() == "post not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateStatus moves a post between new/ignored/done for this user
// PATCH /api/posts/:id/status
func (h *PostHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.postUsecase.UpdateStatus(userID, postID, postdomain.UserPostStatus(req.Status))
	if err != nil {
		switch err.Error() {
		case "post not found":
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		case "invalid status":
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// SaveResponse stores the user's drafted response for a post
// PUT /api/posts/:id/response
func (h *PostHandler) SaveResponse(c *gin.Context) {
	userID := c.GetString("userID")
	postID := c.Param("id")

	var req saveResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postUsecase.SaveResponse(userID, postID, req.Response); err != nil {
		if err.Error() == "post not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
