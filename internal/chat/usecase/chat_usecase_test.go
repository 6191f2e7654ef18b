package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	billingdomain "subwatch-backend/internal/billing/domain"
	billingusecase "subwatch-backend/internal/billing/usecase"
	chatdomain "subwatch-backend/internal/chat/domain"
	postdomain "subwatch-backend/internal/post/domain"
	postrepo "subwatch-backend/internal/post/repository"
	"subwatch-backend/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatRepo struct {
	messages []*chatdomain.ChatMessage
}

func (f *fakeChatRepo) Append(m *chatdomain.ChatMessage) error {
	f.messages = append(f.messages, m)
	return nil
}
func (f *fakeChatRepo) FindByUserAndPost(userID, postID string, limit int) ([]*chatdomain.ChatMessage, error) {
	var out []*chatdomain.ChatMessage
	for _, m := range f.messages {
		if m.UserID == userID && m.PostID == postID && !m.Suggested {
			out = append(out, m)
		}
	}
	return out, nil
}
func (f *fakeChatRepo) FindSuggestion(userID, postID string) (*chatdomain.ChatMessage, error) {
	for _, m := range f.messages {
		if m.UserID == userID && m.PostID == postID && m.Suggested {
			return m, nil
		}
	}
	return nil, nil
}

type fakePostStore struct {
	posts map[string]*postdomain.Post
}

func (f *fakePostStore) UpsertByExternalID(p *postdomain.Post) (*postdomain.Post, error) {
	return p, nil
}
func (f *fakePostStore) LatestCreatedBySubreddit([]string) (map[string]time.Time, error) {
	return map[string]time.Time{}, nil
}
func (f *fakePostStore) FindByID(id string) (*postdomain.Post, error) { return f.posts[id], nil }

type fakeAssocStore struct {
	owned map[string]bool // "userID/postID"
}

func (f *fakeAssocStore) CreateIfAbsent(userID, postID string) (*postdomain.UserPost, bool, error) {
	return nil, false, nil
}
func (f *fakeAssocStore) FindByUserAndPost(userID, postID string) (*postdomain.UserPost, error) {
	if f.owned[userID+"/"+postID] {
		return &postdomain.UserPost{UserID: userID, PostID: postID}, nil
	}
	return nil, nil
}
func (f *fakeAssocStore) FindByUserID(string, postrepo.PostFilter) ([]*postrepo.UserPostItem, int64, error) {
	return nil, 0, nil
}
func (f *fakeAssocStore) UpdateStatus(string, string, postdomain.UserPostStatus) error { return nil }
func (f *fakeAssocStore) SaveResponse(string, string, string) error                    { return nil }
func (f *fakeAssocStore) AddTags(string, []string) error                               { return nil }

type fakeChatClient struct {
	completion *ai.Completion
	err        error

	gotKey      string
	gotModel    string
	gotMessages []ai.Message
	calls       int
}

func (f *fakeChatClient) ChatCompletion(_ context.Context, apiKey, model string, messages []ai.Message) (*ai.Completion, error) {
	f.calls++
	f.gotKey = apiKey
	f.gotModel = model
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.completion, nil
}

type fakeBilling struct {
	metered []billingusecase.UsageRecord
}

func (f *fakeBilling) GetBalance(string) (int, error)      { return 0, nil }
func (f *fakeBilling) GrantCredits(string, int) error      { return nil }
func (f *fakeBilling) GetUsage(string, int, int) ([]*billingdomain.UsageLog, int64, error) {
	return nil, 0, nil
}
func (f *fakeBilling) Meter(record billingusecase.UsageRecord) int {
	f.metered = append(f.metered, record)
	return billingusecase.CostCents(record.CostDollars)
}

type chatFixture struct {
	uc       ChatUsecase
	chatRepo *fakeChatRepo
	client   *fakeChatClient
	billing  *fakeBilling
}

func newChatFixture(t *testing.T, user *fakeUserReader, dec *fakeDecryptor, balance int, operatorKey, creditsKey string) *chatFixture {
	t.Helper()

	body := "My query on a 40M row table takes 12s."
	chatRepo := &fakeChatRepo{}
	client := &fakeChatClient{completion: &ai.Completion{
		Content:          "Try adding an index on the filter column.",
		Model:            ai.DefaultModel,
		PromptTokens:     100,
		CompletionTokens: 40,
	}}
	billing := &fakeBilling{}

	resolver := NewAccessResolver(user, dec, &fakeBalanceReader{balance: balance}, operatorKey, creditsKey)
	uc := NewChatUsecase(
		chatRepo,
		&fakePostStore{posts: map[string]*postdomain.Post{
			"post-1": {ID: "post-1", Subreddit: "postgresql", Title: "Slow query", Body: &body},
		}},
		&fakeAssocStore{owned: map[string]bool{"user-1/post-1": true}},
		resolver,
		client,
		billing,
	)
	return &chatFixture{uc: uc, chatRepo: chatRepo, client: client, billing: billing}
}

func TestChat_ByokPersistsTurnWithoutMetering(t *testing.T) {
	fx := newChatFixture(t, &fakeUserReader{user: userWithKey()}, &fakeDecryptor{plaintext: "gsk_user"}, 0, "", "")

	result, err := fx.uc.Chat(context.Background(), "user-1", "post-1", "What index would help?", "")
	require.NoError(t, err)

	assert.Equal(t, string(TierBYOK), result.Tier)
	assert.Equal(t, "gsk_user", fx.client.gotKey)
	assert.Zero(t, result.CostCents)
	assert.Empty(t, fx.billing.metered)

	// Both halves of the turn are persisted, user first
	require.Len(t, fx.chatRepo.messages, 2)
	assert.Equal(t, "user", fx.chatRepo.messages[0].Role)
	assert.Equal(t, "assistant", fx.chatRepo.messages[1].Role)
	assert.Equal(t, "Try adding an index on the filter column.", fx.chatRepo.messages[1].Content)
}

func TestChat_CreditsTierIsMetered(t *testing.T) {
	cost := 0.03
	fx := newChatFixture(t, &fakeUserReader{user: userWithoutKey()}, &fakeDecryptor{}, 500, "", "gsk_platform")
	fx.client.completion.CostDollars = &cost

	result, err := fx.uc.Chat(context.Background(), "user-1", "post-1", "Summarize this", "")
	require.NoError(t, err)

	assert.Equal(t, string(TierCredits), result.Tier)
	assert.Equal(t, 3, result.CostCents)
	require.Len(t, fx.billing.metered, 1)
	assert.Equal(t, "post-1", fx.billing.metered[0].PostID)
	assert.Equal(t, 100, fx.billing.metered[0].PromptTokens)
}

func TestChat_NoAccessNeverCallsVendor(t *testing.T) {
	fx := newChatFixture(t, &fakeUserReader{user: userWithoutKey()}, &fakeDecryptor{}, 0, "", "")

	_, err := fx.uc.Chat(context.Background(), "user-1", "post-1", "hello", "")

	assert.ErrorIs(t, err, ErrNoAIAccess)
	assert.Zero(t, fx.client.calls)
	assert.Empty(t, fx.chatRepo.messages)
}

func TestChat_UnownedPostIsNotFound(t *testing.T) {
	fx := newChatFixture(t, &fakeUserReader{user: userWithKey()}, &fakeDecryptor{plaintext: "gsk_user"}, 0, "", "")

	_, err := fx.uc.Chat(context.Background(), "user-2", "post-1", "hello", "")

	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Zero(t, fx.client.calls)
}

func TestChat_InvalidKeyErrorSurfaces(t *testing.T) {
	fx := newChatFixture(t, &fakeUserReader{user: userWithKey()}, &fakeDecryptor{plaintext: "gsk_revoked"}, 0, "", "")
	fx.client.err = ai.ErrInvalidKey

	_, err := fx.uc.Chat(context.Background(), "user-1", "post-1", "hello", "")

	assert.ErrorIs(t, err, ai.ErrInvalidKey)
	assert.Empty(t, fx.chatRepo.messages)
}

func TestChat_HistoryIsReplayedInOrder(t *testing.T) {
	fx := newChatFixture(t, &fakeUserReader{user: userWithKey()}, &fakeDecryptor{plaintext: "gsk_user"}, 0, "", "")

	_, err := fx.uc.Chat(context.Background(), "user-1", "post-1", "first question", "")
	require.NoError(t, err)
	_, err = fx.uc.Chat(context.Background(), "user-1", "post-1", "follow-up", "")
	require.NoError(t, err)

	// Second call: system prompt, prior turn (2 messages), new question
	require.Len(t, fx.client.gotMessages, 4)
	assert.Equal(t, "system", fx.client.gotMessages[0].Role)
	assert.Equal(t, "first question", fx.client.gotMessages[1].Content)
	assert.Equal(t, "assistant", fx.client.gotMessages[2].Role)
	assert.Equal(t, "follow-up", fx.client.gotMessages[3].Content)
}

func TestSuggestWorker_GeneratesDraftAndSkipsWithoutAccess(t *testing.T) {
	body := "Looking for advice."
	chatRepo := &fakeChatRepo{}
	client := &fakeChatClient{completion: &ai.Completion{Content: "Here is a draft.", Model: ai.DefaultModel}}
	billing := &fakeBilling{}
	resolver := NewAccessResolver(
		&fakeUserReader{user: userWithKey()},
		&fakeDecryptor{plaintext: "gsk_user"},
		&fakeBalanceReader{},
		"", "",
	)
	svc := NewSuggestWorkerService(
		chatRepo,
		&fakePostStore{posts: map[string]*postdomain.Post{
			"post-1": {ID: "post-1", Subreddit: "golang", Title: "Need advice", Body: &body},
		}},
		&fakeAssocStore{owned: map[string]bool{"user-1/post-1": true}},
		resolver,
		client,
		billing,
		nil,
		1,
	)

	svc.processJob(SuggestJob{UserID: "user-1", PostID: "post-1"})

	require.Len(t, chatRepo.messages, 1)
	assert.True(t, chatRepo.messages[0].Suggested)
	assert.Equal(t, "Here is a draft.", chatRepo.messages[0].Content)

	// Re-running is a cache hit: no second vendor call
	svc.processJob(SuggestJob{UserID: "user-1", PostID: "post-1"})
	assert.Equal(t, 1, client.calls)

	// No access: nothing generated, nothing persisted
	noAccess := NewSuggestWorkerService(
		&fakeChatRepo{},
		&fakePostStore{posts: map[string]*postdomain.Post{"post-1": {ID: "post-1"}}},
		&fakeAssocStore{owned: map[string]bool{"user-1/post-1": true}},
		NewAccessResolver(&fakeUserReader{user: userWithoutKey()}, &fakeDecryptor{}, &fakeBalanceReader{}, "", ""),
		client,
		billing,
		nil,
		1,
	)
	noAccess.processJob(SuggestJob{UserID: "user-1", PostID: "post-1"})
	assert.Equal(t, 1, client.calls)
}

func TestChat_ResolverErrorPropagates(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	resolver := NewAccessResolver(
		&fakeUserReader{err: errors.New("db down")},
		&fakeDecryptor{},
		&fakeBalanceReader{},
		"", "",
	)
	uc := NewChatUsecase(
		chatRepo,
		&fakePostStore{posts: map[string]*postdomain.Post{"post-1": {ID: "post-1"}}},
		&fakeAssocStore{owned: map[string]bool{"user-1/post-1": true}},
		resolver,
		&fakeChatClient{},
		&fakeBilling{},
	)

	_, err := uc.Chat(context.Background(), "user-1", "post-1", "hello", "")
	assert.Error(t, err)
	assert.Empty(t, chatRepo.messages)
}
