package api

import (
	"log"

	authUsecasePkg "subwatch-backend/internal/auth/usecase"
	billingDelivery "subwatch-backend/internal/billing/delivery"
	billingUsecasePkg "subwatch-backend/internal/billing/usecase"
	chatDelivery "subwatch-backend/internal/chat/delivery"
	chatRepo "subwatch-backend/internal/chat/repository"
	chatUsecasePkg "subwatch-backend/internal/chat/usecase"
	"subwatch-backend/internal/ingest"
	ingestDelivery "subwatch-backend/internal/ingest/delivery"
	postDelivery "subwatch-backend/internal/post/delivery"
	postRepo "subwatch-backend/internal/post/repository"
	postUsecasePkg "subwatch-backend/internal/post/usecase"
	subredditDelivery "subwatch-backend/internal/subreddit/delivery"
	subredditUsecasePkg "subwatch-backend/internal/subreddit/usecase"
	tagDelivery "subwatch-backend/internal/tag/delivery"
	tagUsecasePkg "subwatch-backend/internal/tag/usecase"
	"subwatch-backend/pkg/ai"
	"subwatch-backend/pkg/config"
	"subwatch-backend/pkg/crypto"
	"subwatch-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecasePkg.AuthUsecase
	sseManager  *sse.Manager
	config      *config.Config

	subredditHandler *subredditDelivery.SubredditHandler
	tagHandler       *tagDelivery.TagHandler
	postHandler      *postDelivery.PostHandler
	chatHandler      *chatDelivery.ChatHandler
	billingHandler   *billingDelivery.BillingHandler
	fetchHandler     *ingestDelivery.FetchHandler

	suggestWorker *chatUsecasePkg.SuggestWorkerService
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	subredditUc subredditUsecasePkg.SubredditUsecase,
	tagUc tagUsecasePkg.TagUsecase,
	postUc postUsecasePkg.PostUsecase,
	billingUc billingUsecasePkg.BillingUsecase,
	chatRepository chatRepo.ChatRepository,
	postRepository postRepo.PostRepository,
	userPostRepository postRepo.UserPostRepository,
	resolverUsers chatUsecasePkg.UserReader,
	encryptor *crypto.Encryptor,
	engine *ingest.Engine,
	sseManager *sse.Manager,
	cfg *config.Config,
) *Handler {
	groqClient := ai.NewGroqClient()

	resolver := chatUsecasePkg.NewAccessResolver(
		resolverUsers,
		encryptor,
		billingUc,
		cfg.GroqAPIKey,
		cfg.CreditsGroqAPIKey,
	)

	chatUc := chatUsecasePkg.NewChatUsecase(
		chatRepository,
		postRepository,
		userPostRepository,
		resolver,
		groqClient,
		billingUc,
	)

	suggestWorker := chatUsecasePkg.NewSuggestWorkerService(
		chatRepository,
		postRepository,
		userPostRepository,
		resolver,
		groqClient,
		billingUc,
		sseManager,
		cfg.SuggestWorkerCount,
	)
	suggestWorker.Start()
	log.Println("Suggestion worker service started")

	return &Handler{
		authUsecase:      authUc,
		sseManager:       sseManager,
		config:           cfg,
		subredditHandler: subredditDelivery.NewSubredditHandler(subredditUc),
		tagHandler:       tagDelivery.NewTagHandler(tagUc),
		postHandler:      postDelivery.NewPostHandler(postUc),
		chatHandler:      chatDelivery.NewChatHandler(chatUc, suggestWorker),
		billingHandler:   billingDelivery.NewBillingHandler(billingUc),
		fetchHandler:     ingestDelivery.NewFetchHandler(engine),
		suggestWorker:    suggestWorker,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trigger-Token")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)

	return r.Run(addr)
}

// Stop drains background workers before shutdown
func (h *Handler) Stop() {
	h.suggestWorker.Stop()
}
