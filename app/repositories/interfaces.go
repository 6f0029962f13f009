package repositories

import "inkfeed/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	// List returns posts newest first.
	List(limit, offset int) ([]*models.Post, error)
	Count() (int, error)
	Update(post *models.Post) error
	Delete(id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create fails with ErrDuplicate when the email is already registered.
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}
