package api

import (
	"net/http"

	"subwatch-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", delivery.AuthMiddleware(h.authUsecase), func(c *gin.Context) {
			userID := c.GetString("userID")
			h.sseManager.ServeHTTP(c, userID)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(h.authUsecase), authHandler.Me)
		}

		// Settings routes (protected) - stored provider key management
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			settings.GET("", authHandler.GetSettings)
			settings.PUT("/groq-key", authHandler.SaveGroqKey)
			settings.DELETE("/groq-key", authHandler.DeleteGroqKey)
		}

		// Subscription routes (protected)
		subreddits := api.Group("/subreddits")
		subreddits.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			subreddits.POST("", h.subredditHandler.Subscribe)
			subreddits.GET("", h.subredditHandler.GetSubscriptions)
			subreddits.DELETE("/:id", h.subredditHandler.Unsubscribe)
			subreddits.PUT("/refresh-interval", h.subredditHandler.SetRefreshInterval)
		}

		// Tag routes (protected)
		tags := api.Group("/tags")
		tags.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			tags.POST("", h.tagHandler.CreateTag)
			tags.GET("", h.tagHandler.GetTags)
			tags.PUT("/:id", h.tagHandler.UpdateTag)
			tags.DELETE("/:id", h.tagHandler.DeleteTag)
		}

		// Post feed routes (protected)
		posts := api.Group("/posts")
		posts.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			posts.GET("", h.postHandler.GetFeed)
			posts.GET("/:id", h.postHandler.GetPost)
			posts.PATCH("/:id/status", h.postHandler.UpdateStatus)
			posts.PUT("/:id/response", h.postHandler.SaveResponse)

			// AI chat about a post
			posts.POST("/:id/chat", h.chatHandler.Chat)
			posts.GET("/:id/chat", h.chatHandler.GetHistory)
			posts.POST("/:id/suggest", h.chatHandler.Suggest)
		}

		// Credit routes (protected)
		credits := api.Group("/credits")
		credits.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			credits.GET("", h.billingHandler.GetBalance)
			credits.GET("/usage", h.billingHandler.GetUsage)
		}

		// External trigger routes, guarded by the shared-secret header
		trigger := api.Group("")
		trigger.Use(delivery.TriggerMiddleware(h.config.TriggerToken))
		{
			trigger.GET("/fetch/trigger", h.fetchHandler.Trigger)
			trigger.POST("/credits/grant", h.billingHandler.GrantCredits)
		}
	}
}
