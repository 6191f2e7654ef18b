package usecase

import (
	"errors"

	tagdomain "subwatch-backend/internal/tag/domain"
	"subwatch-backend/internal/tag/repository"
)

// TagUsecase defines the business logic for keyword tags
type TagUsecase interface {
	CreateTag(userID, name, color string, terms []string) (*tagdomain.Tag, error)
	GetUserTags(userID string) ([]*tagdomain.Tag, error)
	UpdateTag(userID, tagID string, updates TagUpdateRequest) (*tagdomain.Tag, error)
	DeleteTag(userID, tagID string) error
}

// TagUpdateRequest represents the fields that can be updated
type TagUpdateRequest struct {
	Name  *string   `json:"name,omitempty"`
	Color *string   `json:"color,omitempty"`
	Terms *[]string `json:"terms,omitempty"`
}

type tagUsecase struct {
	tagRepo repository.TagRepository
}

func NewTagUsecase(tagRepo repository.TagRepository) TagUsecase {
	return &tagUsecase{tagRepo: tagRepo}
}

func (u *tagUsecase) CreateTag(userID, name, color string, terms []string) (*tagdomain.Tag, error) {
	if name == "" {
		return nil, errors.New("tag name is required")
	}

	tag := &tagdomain.Tag{
		UserID: userID,
		Name:   name,
		Color:  color,
		Terms:  terms,
	}
	if err := u.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (u *tagUsecase) GetUserTags(userID string) ([]*tagdomain.Tag, error) {
	return u.tagRepo.FindByUserID(userID)
}

func (u *tagUsecase) UpdateTag(userID, tagID string, updates TagUpdateRequest) (*tagdomain.Tag, error) {
	tag, err := u.ownedTag(userID, tagID)
	if err != nil {
		return nil, err
	}

	if updates.Name != nil {
		tag.Name = *updates.Name
	}
	if updates.Color != nil {
		tag.Color = *updates.Color
	}
	if updates.Terms != nil {
		// Existing post-tag associations are not recomputed; new terms apply
		// to posts ingested from now on
		tag.Terms = *updates.Terms
	}

	if err := u.tagRepo.Update(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (u *tagUsecase) DeleteTag(userID, tagID string) error {
	if _, err := u.ownedTag(userID, tagID); err != nil {
		return err
	}
	return u.tagRepo.Delete(tagID)
}

func (u *tagUsecase) ownedTag(userID, tagID string) (*tagdomain.Tag, error) {
	tag, err := u.tagRepo.FindByID(tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, errors.New("tag not found")
	}
	if tag.UserID != userID {
		return nil, errors.New("unauthorized")
	}
	return tag, nil
}
