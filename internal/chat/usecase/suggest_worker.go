package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	billingusecase "subwatch-backend/internal/billing/usecase"
	chatdomain "subwatch-backend/internal/chat/domain"
	chatrepo "subwatch-backend/internal/chat/repository"
	postrepo "subwatch-backend/internal/post/repository"
	"subwatch-backend/pkg/ai"
	"subwatch-backend/pkg/sse"
)

// SuggestJob is a request to draft a reply for one (user, post) pair
type SuggestJob struct {
	UserID string
	PostID string
}

// SuggestWorkerService generates suggested replies in the background and
// pushes them to the user over SSE when ready
type SuggestWorkerService struct {
	chatRepo     chatrepo.ChatRepository
	postRepo     postrepo.PostRepository
	userPostRepo postrepo.UserPostRepository
	resolver     *AccessResolver
	client       ai.ChatClient
	billing      billingusecase.BillingUsecase
	sseManager   *sse.Manager

	jobQueue    chan SuggestJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	mu          sync.Mutex
}

func NewSuggestWorkerService(
	chatRepo chatrepo.ChatRepository,
	postRepo postrepo.PostRepository,
	userPostRepo postrepo.UserPostRepository,
	resolver *AccessResolver,
	client ai.ChatClient,
	billing billingusecase.BillingUsecase,
	sseManager *sse.Manager,
	workerCount int,
) *SuggestWorkerService {
	if workerCount <= 0 {
		workerCount = 3
	}

	return &SuggestWorkerService{
		chatRepo:     chatRepo,
		postRepo:     postRepo,
		userPostRepo: userPostRepo,
		resolver:     resolver,
		client:       client,
		billing:      billing,
		sseManager:   sseManager,
		jobQueue:     make(chan SuggestJob, 500),
		workerCount:  workerCount,
	}
}

// Start launches the worker pool. Safe to call more than once.
func (s *SuggestWorkerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	log.Printf("[SuggestWorker] Started %d workers", s.workerCount)
}

// Stop drains the queue and waits for all workers to finish
func (s *SuggestWorkerService) Stop() {
	close(s.jobQueue)
	s.workerWg.Wait()
	log.Println("[SuggestWorker] All workers stopped")
}

// QueueJob adds a job without blocking; returns false when the queue is full
func (s *SuggestWorkerService) QueueJob(job SuggestJob) bool {
	select {
	case s.jobQueue <- job:
		return true
	default:
		return false
	}
}

func (s *SuggestWorkerService) worker(id int) {
	defer s.workerWg.Done()

	for job := range s.jobQueue {
		s.processJob(job)
	}

	log.Printf("[SuggestWorker] Worker %d stopped", id)
}

func (s *SuggestWorkerService) processJob(job SuggestJob) {
	// Cache hit: a draft already exists, just re-deliver it
	existing, err := s.chatRepo.FindSuggestion(job.UserID, job.PostID)
	if err != nil {
		log.Printf("[SuggestWorker] Error checking cache for post %s: %v", job.PostID, err)
		return
	}
	if existing != nil {
		s.sendSuggestion(job.UserID, job.PostID, existing.Content)
		return
	}

	assoc, err := s.userPostRepo.FindByUserAndPost(job.UserID, job.PostID)
	if err != nil || assoc == nil {
		return
	}
	post, err := s.postRepo.FindByID(job.PostID)
	if err != nil || post == nil {
		return
	}

	access, err := s.resolver.Resolve(job.UserID, "")
	if err != nil {
		log.Printf("[SuggestWorker] Error resolving access for user %s: %v", job.UserID, err)
		return
	}
	if access.Tier == TierNone {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	messages := []ai.Message{
		{Role: "system", Content: postContextPrompt(post)},
		{Role: "user", Content: "Draft a short, helpful reply I could post as a comment. Return only the reply text."},
	}
	completion, err := s.client.ChatCompletion(ctx, access.APIKey, access.Model, messages)
	if err != nil {
		log.Printf("[SuggestWorker] AI error for post %s: %v", job.PostID, err)
		return
	}

	draft := &chatdomain.ChatMessage{
		UserID:    job.UserID,
		PostID:    job.PostID,
		Role:      "assistant",
		Content:   completion.Content,
		Model:     completion.Model,
		Tier:      string(access.Tier),
		Suggested: true,
	}
	if err := s.chatRepo.Append(draft); err != nil {
		log.Printf("[SuggestWorker] Save error for post %s: %v", job.PostID, err)
		return
	}

	if access.Metered() {
		s.billing.Meter(billingusecase.UsageRecord{
			UserID:           job.UserID,
			PostID:           job.PostID,
			Model:            completion.Model,
			Provider:         "groq",
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			CostDollars:      completion.CostDollars,
		})
	}

	s.sendSuggestion(job.UserID, job.PostID, completion.Content)

	log.Printf("[SuggestWorker] Generated suggestion for post %s", job.PostID)
}

func (s *SuggestWorkerService) sendSuggestion(userID, postID, suggestion string) {
	if s.sseManager == nil {
		return
	}

	s.sseManager.SendToUser(userID, "suggestion_ready", map[string]interface{}{
		"post_id":    postID,
		"suggestion": suggestion,
	})
}
