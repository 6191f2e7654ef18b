package delivery

import (
	"net/http"

	"subwatch-backend/internal/tag/usecase"

	"github.com/gin-gonic/gin"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagUsecase usecase.TagUsecase
}

func NewTagHandler(tagUsecase usecase.TagUsecase) *TagHandler {
	return &TagHandler{
		tagUsecase: tagUsecase,
	}
}

type createTagRequest struct {
	Name  string   `json:"name" binding:"required"`
	Color string   `json:"color"`
	Terms []string `json:"terms"`
}

// CreateTag creates a new tag
// POST /api/tags
func (h *TagHandler) CreateTag(c *gin.Context) {
	userID := c.GetString("userID")

	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tagUsecase.CreateTag(userID, req.Name, req.Color, req.Terms)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// GetTags lists the user's tags
// GET /api/tags
func (h *TagHandler) GetTags(c *gin.Context) {
	userID := c.GetString("userID")

	tags, err := h.tagUsecase.GetUserTags(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// UpdateTag updates a tag's name, color or terms
// PUT /api/tags/:id
func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID := c.GetString("userID")
	tagID := c.Param("id")

	var updates usecase.TagUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tagUsecase.UpdateTag(userID, tagID, updates)
	if err != nil {
		switch err.Error() {
		case "tag not found":
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		case "unauthorized":
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, tag)
}

// DeleteTag deletes a tag
// DELETE /api/tags/:id
func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID := c.GetString("userID")
	tagID := c.Param("id")

	if err := h.tagUsecase.DeleteTag(userID, tagID); err != nil {
		switch err.Error() {
		case "tag not found":
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		case "unauthorized":
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
