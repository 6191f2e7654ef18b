package usecase

import (
	"errors"
	"strings"

	subdomain "subwatch-backend/internal/subreddit/domain"
	"subwatch-backend/internal/subreddit/repository"
)

// SubredditUsecase defines the business logic for managing subscriptions
type SubredditUsecase interface {
	Subscribe(userID, name string) (*subdomain.Subscription, error)
	GetSubscriptions(userID string) ([]*subdomain.Subscription, error)
	Unsubscribe(userID, subscriptionID string) error
	SetRefreshInterval(name string, minutes int) error
}

type subredditUsecase struct {
	subRepo    repository.SubscriptionRepository
	statusRepo repository.FetchStatusRepository
}

func NewSubredditUsecase(subRepo repository.SubscriptionRepository, statusRepo repository.FetchStatusRepository) SubredditUsecase {
	return &subredditUsecase{
		subRepo:    subRepo,
		statusRepo: statusRepo,
	}
}

func (u *subredditUsecase) Subscribe(userID, name string) (*subdomain.Subscription, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, errors.New("subreddit name is required")
	}

	existing, err := u.subRepo.FindByUserAndName(userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("already subscribed")
	}

	sub := &subdomain.Subscription{
		UserID: userID,
		Name:   name,
	}
	if err := u.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (u *subredditUsecase) GetSubscriptions(userID string) ([]*subdomain.Subscription, error) {
	return u.subRepo.FindByUserID(userID)
}

func (u *subredditUsecase) Unsubscribe(userID, subscriptionID string) error {
	return u.subRepo.Delete(userID, subscriptionID)
}

func (u *subredditUsecase) SetRefreshInterval(name string, minutes int) error {
	if minutes < 1 {
		return errors.New("refresh interval must be at least 1 minute")
	}
	return u.statusRepo.SetRefreshInterval(normalizeName(name), minutes)
}

// normalizeName strips an optional "r/" prefix and lowercases the name, so
// "r/PostgreSQL" and "postgresql" are the same subscription.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	return strings.ToLower(name)
}
