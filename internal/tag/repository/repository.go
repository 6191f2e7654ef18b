package repository

import tagdomain "subwatch-backend/internal/tag/domain"

// TagRepository defines data access for user tags
type TagRepository interface {
	Create(tag *tagdomain.Tag) error
	FindByID(id string) (*tagdomain.Tag, error)
	FindByUserID(userID string) ([]*tagdomain.Tag, error)
	Update(tag *tagdomain.Tag) error
	Delete(id string) error
}
