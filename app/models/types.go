package models

import "time"

// DefaultStatus is the status every new user starts with.
const DefaultStatus = "I am new!"

// User represents an account that can own posts.
type User struct {
	ID        string    `json:"_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Status    string    `json:"status"`
	Posts     []string  `json:"posts"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post represents a blog post. CreatorID is fixed at creation.
type Post struct {
	ID        string    `json:"_id" validate:"required"`
	Title     string    `json:"title" validate:"required,min=5"`
	Content   string    `json:"content" validate:"required,min=5"`
	ImageURL  string    `json:"imageUrl" validate:"required"`
	CreatorID string    `json:"creatorId" validate:"required"`
	Creator   *Author   `json:"creator,omitempty" validate:"-"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the public view of a post's creator.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
