package usecase

import (
	"errors"

	postdomain "subwatch-backend/internal/post/domain"
	"subwatch-backend/internal/post/repository"
)

// PostUsecase defines the business logic for a user's post feed
type PostUsecase interface {
	GetFeed(userID string, filter repository.PostFilter) ([]*repository.UserPostItem, int64, error)
	GetPost(userID, postID string) (*repository.UserPostItem, error)
	UpdateStatus(userID, postID string, status postdomain.UserPostStatus) error
	SaveResponse(userID, postID, response string) error
}

type postUsecase struct {
	postRepo     repository.PostRepository
	userPostRepo repository.UserPostRepository
}

func NewPostUsecase(postRepo repository.PostRepository, userPostRepo repository.UserPostRepository) PostUsecase {
	return &postUsecase{
		postRepo:     postRepo,
		userPostRepo: userPostRepo,
	}
}

func (u *postUsecase) GetFeed(userID string, filter repository.PostFilter) ([]*repository.UserPostItem, int64, error) {
	return u.userPostRepo.FindByUserID(userID, filter)
}

func (u *postUsecase) GetPost(userID, postID string) (*repository.UserPostItem, error) {
	assoc, err := u.userPostRepo.FindByUserAndPost(userID, postID)
	if err != nil {
		return nil, err
	}
	if assoc == nil {
		return nil, errors.New("post not found")
	}

	post, err := u.postRepo.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errors.New("post not found")
	}

	return &repository.UserPostItem{Association: assoc, Post: post}, nil
}

func (u *postUsecase) UpdateStatus(userID, postID string, status postdomain.UserPostStatus) error {
	switch status {
	case postdomain.StatusNew, postdomain.StatusIgnored, postdomain.StatusDone:
	default:
		return errors.New("invalid status")
	}

	assoc, err := u.userPostRepo.FindByUserAndPost(userID, postID)
	if err != nil {
		return err
	}
	if assoc == nil {
		return errors.New("post not found")
	}

	return u.userPostRepo.UpdateStatus(userID, postID, status)
}

func (u *postUsecase) SaveResponse(userID, postID, response string) error {
	assoc, err := u.userPostRepo.FindByUserAndPost(userID, postID)
	if err != nil {
		return err
	}
	if assoc == nil {
		return errors.New("post not found")
	}

	return u.userPostRepo.SaveResponse(userID, postID, response)
}
