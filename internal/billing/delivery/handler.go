package delivery

import (
	"net/http"
	"strconv"

	"subwatch-backend/internal/billing/usecase"

	"github.com/gin-gonic/gin"
)

// BillingHandler handles credit balance and usage-history HTTP requests
type BillingHandler struct {
	billingUsecase usecase.BillingUsecase
}

func NewBillingHandler(billingUsecase usecase.BillingUsecase) *BillingHandler {
	return &BillingHandler{
		billingUsecase: billingUsecase,
	}
}

type grantRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Cents  int    `json:"cents" binding:"required,min=1"`
}

// GetBalance returns the user's credit balance in cents
// GET /api/credits
func (h *BillingHandler) GetBalance(c *gin.Context) {
	userID := c.GetString("userID")

	balance, err := h.billingUsecase.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance_cents": balance})
}

// GetUsage returns the user's AI usage history
// GET /api/credits/usage?limit=50&offset=0
func (h *BillingHandler) GetUsage(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.billingUsecase.GetUsage(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usage": entries,
		"total": total,
	})
}

// GrantCredits adds credits to a user's balance. Called by the payment
// gateway after a successful checkout; guarded by the trigger token.
// POST /api/credits/grant
func (h *BillingHandler) GrantCredits(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.billingUsecase.GrantCredits(req.UserID, req.Cents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "granted"})
}
