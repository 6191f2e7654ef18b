package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	billingusecase "subwatch-backend/internal/billing/usecase"
	chatdomain "subwatch-backend/internal/chat/domain"
	chatrepo "subwatch-backend/internal/chat/repository"
	postdomain "subwatch-backend/internal/post/domain"
	postrepo "subwatch-backend/internal/post/repository"
	"subwatch-backend/pkg/ai"
)

var (
	ErrNoAIAccess   = errors.New("no AI access available")
	ErrPostNotFound = errors.New("post not found")
)

// historyWindow caps how much prior conversation is replayed to the vendor
const historyWindow = 20

// ChatResult is one completed chat turn
type ChatResult struct {
	Reply     *chatdomain.ChatMessage `json:"reply"`
	Tier      string                  `json:"tier"`
	Model     string                  `json:"model"`
	CostCents int                     `json:"cost_cents,omitempty"`
}

// ChatUsecase defines the per-post AI chat business logic
type ChatUsecase interface {
	// Chat runs one non-streaming chat turn about the given post. The model
	// is optional; vendor errors are returned wrapped so handlers can map
	// ai.ErrInvalidKey separately from transient failures.
	Chat(ctx context.Context, userID, postID, message, model string) (*ChatResult, error)

	GetHistory(userID, postID string) ([]*chatdomain.ChatMessage, error)
}

type chatUsecase struct {
	chatRepo     chatrepo.ChatRepository
	postRepo     postrepo.PostRepository
	userPostRepo postrepo.UserPostRepository
	resolver     *AccessResolver
	client       ai.ChatClient
	billing      billingusecase.BillingUsecase
}

func NewChatUsecase(
	chatRepo chatrepo.ChatRepository,
	postRepo postrepo.PostRepository,
	userPostRepo postrepo.UserPostRepository,
	resolver *AccessResolver,
	client ai.ChatClient,
	billing billingusecase.BillingUsecase,
) ChatUsecase {
	return &chatUsecase{
		chatRepo:     chatRepo,
		postRepo:     postRepo,
		userPostRepo: userPostRepo,
		resolver:     resolver,
		client:       client,
		billing:      billing,
	}
}

func (u *chatUsecase) Chat(ctx context.Context, userID, postID, message, model string) (*ChatResult, error) {
	post, err := u.loadOwnedPost(userID, postID)
	if err != nil {
		return nil, err
	}

	access, err := u.resolver.Resolve(userID, model)
	if err != nil {
		return nil, err
	}
	if access.Tier == TierNone {
		return nil, ErrNoAIAccess
	}

	history, err := u.chatRepo.FindByUserAndPost(userID, postID, historyWindow)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: "system", Content: postContextPrompt(post)})
	for _, turn := range history {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: "user", Content: message})

	// Detach from the requester's context: a client disconnect must not
	// abort a completion the vendor will bill for anyway.
	vendorCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 90*time.Second)
	defer cancel()

	completion, err := u.client.ChatCompletion(vendorCtx, access.APIKey, access.Model, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	// The turn is committed once the vendor answered: persist and meter even
	// if the requester has since disconnected.
	now := time.Now()
	userTurn := &chatdomain.ChatMessage{
		UserID:    userID,
		PostID:    postID,
		Role:      "user",
		Content:   message,
		CreatedAt: now,
	}
	reply := &chatdomain.ChatMessage{
		UserID:    userID,
		PostID:    postID,
		Role:      "assistant",
		Content:   completion.Content,
		Model:     completion.Model,
		Tier:      string(access.Tier),
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := u.chatRepo.Append(userTurn); err != nil {
		log.Printf("[Chat] Error persisting user turn for post %s: %v", postID, err)
	}
	if err := u.chatRepo.Append(reply); err != nil {
		log.Printf("[Chat] Error persisting reply for post %s: %v", postID, err)
	}

	result := &ChatResult{
		Reply: reply,
		Tier:  string(access.Tier),
		Model: completion.Model,
	}
	if access.Metered() {
		result.CostCents = u.billing.Meter(billingusecase.UsageRecord{
			UserID:           userID,
			PostID:           postID,
			Model:            completion.Model,
			Provider:         "groq",
			PromptTokens:     completion.PromptTokens,
			CompletionTokens: completion.CompletionTokens,
			CostDollars:      completion.CostDollars,
		})
	}
	return result, nil
}

func (u *chatUsecase) GetHistory(userID, postID string) ([]*chatdomain.ChatMessage, error) {
	if _, err := u.loadOwnedPost(userID, postID); err != nil {
		return nil, err
	}
	return u.chatRepo.FindByUserAndPost(userID, postID, 200)
}

// loadOwnedPost resolves postID to a post the user actually has in their
// feed. Posts outside the user's associations are indistinguishable from
// missing ones.
func (u *chatUsecase) loadOwnedPost(userID, postID string) (*postdomain.Post, error) {
	assoc, err := u.userPostRepo.FindByUserAndPost(userID, postID)
	if err != nil {
		return nil, err
	}
	if assoc == nil {
		return nil, ErrPostNotFound
	}

	post, err := u.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func postContextPrompt(post *postdomain.Post) string {
	var b strings.Builder
	b.WriteString("You are an assistant helping the user understand and respond to a Reddit post.\n\n")
	fmt.Fprintf(&b, "Subreddit: r/%s\n", post.Subreddit)
	fmt.Fprintf(&b, "Author: u/%s\n", post.Author)
	fmt.Fprintf(&b, "Title: %s\n", post.Title)
	if post.Body != nil && *post.Body != "" {
		body := *post.Body
		// Truncate to avoid token limits
		if len(body) > 6000 {
			body = body[:6000]
		}
		fmt.Fprintf(&b, "\n%s\n", body)
	}
	b.WriteString("\nAnswer questions about this post and help draft replies. Be concise.")
	return b.String()
}
