package repository

import (
	"errors"
	"time"

	tagdomain "subwatch-backend/internal/tag/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTagRepository implements TagRepository using GORM
type gormTagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &gormTagRepository{db: db}
}

func (r *gormTagRepository) Create(tag *tagdomain.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	tag.CreatedAt = time.Now()
	tag.UpdatedAt = time.Now()
	return r.db.Create(tag).Error
}

func (r *gormTagRepository) FindByID(id string) (*tagdomain.Tag, error) {
	var tag tagdomain.Tag
	err := r.db.Where("id = ?", id).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *gormTagRepository) FindByUserID(userID string) ([]*tagdomain.Tag, error) {
	var tags []*tagdomain.Tag
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *gormTagRepository) Update(tag *tagdomain.Tag) error {
	tag.UpdatedAt = time.Now()
	return r.db.Save(tag).Error
}

func (r *gormTagRepository) Delete(id string) error {
	return r.db.Delete(&tagdomain.Tag{}, "id = ?", id).Error
}
