package main

import (
	"log"

	api "subwatch-backend/cmd/api"
	authdomain "subwatch-backend/internal/auth/domain"
	authRepo "subwatch-backend/internal/auth/repository"
	authUsecase "subwatch-backend/internal/auth/usecase"
	billingdomain "subwatch-backend/internal/billing/domain"
	billingRepo "subwatch-backend/internal/billing/repository"
	billingUsecase "subwatch-backend/internal/billing/usecase"
	chatdomain "subwatch-backend/internal/chat/domain"
	chatRepo "subwatch-backend/internal/chat/repository"
	"subwatch-backend/internal/ingest"
	"subwatch-backend/internal/ingest/lock"
	postdomain "subwatch-backend/internal/post/domain"
	postRepo "subwatch-backend/internal/post/repository"
	postUsecase "subwatch-backend/internal/post/usecase"
	subdomain "subwatch-backend/internal/subreddit/domain"
	subRepo "subwatch-backend/internal/subreddit/repository"
	subUsecase "subwatch-backend/internal/subreddit/usecase"
	tagdomain "subwatch-backend/internal/tag/domain"
	tagRepo "subwatch-backend/internal/tag/repository"
	tagUsecase "subwatch-backend/internal/tag/usecase"
	"subwatch-backend/pkg/config"
	"subwatch-backend/pkg/crypto"
	"subwatch-backend/pkg/database"
	"subwatch-backend/pkg/reddit"
	"subwatch-backend/pkg/sse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&subdomain.Subscription{},
		&subdomain.FetchStatus{},
		&tagdomain.Tag{},
		&postdomain.Post{},
		&postdomain.UserPost{},
		&postdomain.PostTag{},
		&chatdomain.ChatMessage{},
		&billingdomain.CreditBalance{},
		&billingdomain.UsageLog{},
		&lock.FetchLock{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Stored provider keys are encrypted at rest; the server cannot run
	// without the encryption key
	encryptor, err := crypto.NewEncryptor(cfg.CredentialEncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize credential encryptor (set CREDENTIAL_ENCRYPTION_KEY to a hex-encoded 32-byte key): ", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	subscriptionRepository := subRepo.NewSubscriptionRepository(db)
	fetchStatusRepository := subRepo.NewFetchStatusRepository(db)
	tagRepository := tagRepo.NewTagRepository(db)
	postRepository := postRepo.NewPostRepository(db)
	userPostRepository := postRepo.NewUserPostRepository(db)
	chatRepository := chatRepo.NewChatRepository(db)
	creditRepository := billingRepo.NewCreditRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, encryptor, cfg)
	subredditUsecaseInstance := subUsecase.NewSubredditUsecase(subscriptionRepository, fetchStatusRepository)
	tagUsecaseInstance := tagUsecase.NewTagUsecase(tagRepository)
	postUsecaseInstance := postUsecase.NewPostUsecase(postRepository, userPostRepository)
	billingUsecaseInstance := billingUsecase.NewBillingUsecase(creditRepository)

	// Ingestion engine: fetches due subreddits under the run-once lock and
	// fans posts out to subscribers
	redditClient := reddit.NewClient(cfg.RedditBaseURL, cfg.RedditUserAgent)
	locker := lock.NewGormLocker(db, cfg.FetchLockTTL)
	engine := ingest.NewEngine(
		subscriptionRepository,
		fetchStatusRepository,
		postRepository,
		userPostRepository,
		tagRepository,
		redditClient,
		locker,
		sseManager,
		cfg.FetchBackfillWindow,
	)

	// Initialize HTTP handler
	handler := api.NewHandler(
		authUsecaseInstance,
		subredditUsecaseInstance,
		tagUsecaseInstance,
		postUsecaseInstance,
		billingUsecaseInstance,
		chatRepository,
		postRepository,
		userPostRepository,
		userRepository,
		encryptor,
		engine,
		sseManager,
		cfg,
	)
	defer handler.Stop()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
