package delivery

import (
	"net/http"
	"strings"

	"subwatch-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]
		user, err := authUsecase.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// TriggerMiddleware guards endpoints invoked by external services (the cron
// trigger, the payment gateway callback) with a shared-secret header.
func TriggerMiddleware(triggerToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if triggerToken == "" || c.GetHeader("X-Trigger-Token") != triggerToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid trigger token"})
			c.Abort()
			return
		}
		c.Next()
	}
}
