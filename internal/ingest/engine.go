package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"subwatch-backend/internal/ingest/lock"
	postdomain "subwatch-backend/internal/post/domain"
	postrepo "subwatch-backend/internal/post/repository"
	subrepo "subwatch-backend/internal/subreddit/repository"
	tagdomain "subwatch-backend/internal/tag/domain"
	tagrepo "subwatch-backend/internal/tag/repository"
	tagusecase "subwatch-backend/internal/tag/usecase"
	"subwatch-backend/pkg/reddit"
	"subwatch-backend/pkg/sse"
)

// FetchCycleLockName scopes the lock to the whole cycle: at most one fetch
// cycle runs process-wide at any time.
const FetchCycleLockName = "fetch_cycle"

// ErrCycleRunning is the expected outcome when a concurrent trigger finds the
// lock held. Not an error condition.
var ErrCycleRunning = errors.New("fetch cycle already running")

// PostSource fetches newly created posts for a subreddit after a boundary.
// Implemented by pkg/reddit.
type PostSource interface {
	FetchNew(ctx context.Context, subreddit string, after time.Time) ([]reddit.SourcePost, error)
}

// Result summarizes one fetch cycle for the trigger response.
type Result struct {
	Fetched []string `json:"fetched"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// Engine runs the ingestion and fan-out pipeline: fetch due subreddits,
// deduplicate posts, associate them with subscribers, tag-match, and record
// fetch status.
type Engine struct {
	subRepo      subrepo.SubscriptionRepository
	statusRepo   subrepo.FetchStatusRepository
	postRepo     postrepo.PostRepository
	userPostRepo postrepo.UserPostRepository
	tagRepo      tagrepo.TagRepository
	source       PostSource
	locker       lock.Locker
	sseManager   *sse.Manager
	backfill     time.Duration
	now          func() time.Time
}

func NewEngine(
	subRepo subrepo.SubscriptionRepository,
	statusRepo subrepo.FetchStatusRepository,
	postRepo postrepo.PostRepository,
	userPostRepo postrepo.UserPostRepository,
	tagRepo tagrepo.TagRepository,
	source PostSource,
	locker lock.Locker,
	sseManager *sse.Manager,
	backfill time.Duration,
) *Engine {
	return &Engine{
		subRepo:      subRepo,
		statusRepo:   statusRepo,
		postRepo:     postRepo,
		userPostRepo: userPostRepo,
		tagRepo:      tagRepo,
		source:       source,
		locker:       locker,
		sseManager:   sseManager,
		backfill:     backfill,
		now:          time.Now,
	}
}

// RunFetchCycle executes one full cycle under the global lock. Returns
// ErrCycleRunning when another cycle holds the lock; that caller performs no
// writes.
func (e *Engine) RunFetchCycle(ctx context.Context) (*Result, error) {
	token, acquired, err := e.locker.TryAcquire(FetchCycleLockName)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire fetch lock: %w", err)
	}
	if !acquired {
		return nil, ErrCycleRunning
	}
	defer func() {
		if err := e.locker.Release(FetchCycleLockName, token); err != nil {
			log.Printf("[Ingest] Error releasing fetch lock: %v", err)
		}
	}()

	names, err := e.subRepo.DistinctNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed subreddits: %w", err)
	}

	statuses, err := e.statusRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load fetch statuses: %w", err)
	}

	latest, err := e.postRepo.LatestCreatedBySubreddit(names)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest post times: %w", err)
	}

	due := DueSubreddits(e.now(), names, statuses, latest, e.backfill)

	result := &Result{
		Fetched: []string{},
		Skipped: len(names) - len(due),
	}

	for _, d := range due {
		// A failing subreddit is isolated: log it, report it, keep going.
		// Its fetch status is not advanced, so it is retried next cycle.
		if err := e.fetchSubreddit(ctx, d); err != nil {
			log.Printf("[Ingest] Error fetching r/%s: %v", d.Name, err)
			result.Failed = append(result.Failed, d.Name)
			continue
		}
		result.Fetched = append(result.Fetched, d.Name)
	}

	return result, nil
}

func (e *Engine) fetchSubreddit(ctx context.Context, d DueSubreddit) error {
	posts, err := e.source.FetchNew(ctx, d.Name, d.After)
	if err != nil {
		return err
	}

	subscribers, err := e.subRepo.SubscriberIDs(d.Name)
	if err != nil {
		return err
	}

	// Tags are loaded once per subscriber for the whole subreddit batch
	tagsByUser := make(map[string][]*tagdomain.Tag, len(subscribers))
	for _, userID := range subscribers {
		tags, err := e.tagRepo.FindByUserID(userID)
		if err != nil {
			return err
		}
		tagsByUser[userID] = tags
	}

	// The source lists newest-first; ingest oldest-first so a mid-batch
	// failure leaves the stored-post boundary covering exactly what was
	// processed and the retry resumes from there
	for i := len(posts) - 1; i >= 0; i-- {
		post := sourceToPost(posts[i])
		// Store under the normalized subscription name, not the source's
		// casing, so boundary queries line up
		post.Subreddit = d.Name
		stored, err := e.postRepo.UpsertByExternalID(post)
		if err != nil {
			return err
		}

		for _, userID := range subscribers {
			if err := e.fanOut(userID, stored, tagsByUser[userID]); err != nil {
				return err
			}
		}
	}

	// Always record the attempt, even with zero posts, so a quiet subreddit
	// is not re-queried before its interval elapses
	return e.statusRepo.UpsertLastFetched(d.Name, e.now())
}

func (e *Engine) fanOut(userID string, post *postdomain.Post, tags []*tagdomain.Tag) error {
	assoc, created, err := e.userPostRepo.CreateIfAbsent(userID, post.ID)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	matched := tagusecase.Match(post.Title, post.Body, tags)
	if len(matched) > 0 {
		if err := e.userPostRepo.AddTags(assoc.ID, matched); err != nil {
			return err
		}
	}

	if e.sseManager != nil {
		e.sseManager.SendToUser(userID, "new_post", map[string]interface{}{
			"post_id":   post.ID,
			"subreddit": post.Subreddit,
			"title":     post.Title,
			"tag_ids":   matched,
		})
	}
	return nil
}

func sourceToPost(sp reddit.SourcePost) *postdomain.Post {
	post := &postdomain.Post{
		ExternalID:  sp.ExternalID,
		Title:       sp.Title,
		Author:      sp.Author,
		Subreddit:   sp.Subreddit,
		Permalink:   sp.Permalink,
		URL:         sp.URL,
		CreatedUTC:  sp.CreatedUTC,
		Score:       sp.Score,
		NumComments: sp.NumComments,
		NSFW:        sp.NSFW,
	}
	if sp.Body != "" {
		body := sp.Body
		post.Body = &body
	}
	return post
}
