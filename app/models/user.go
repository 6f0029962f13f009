package models

import (
	"errors"
	"time"

	"inkfeed/app/validation"
)

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	if errs := validation.Check(u); len(errs) > 0 {
		return errs
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (u *User) BeforeCreate() {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt
	if u.Status == "" {
		u.Status = DefaultStatus
	}
	if u.Posts == nil {
		u.Posts = []string{}
	}
}

// Touch records a modification.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// AddPost appends a post id to the user's collection
func (u *User) AddPost(postID string) error {
	if postID == "" {
		return errors.New("post id cannot be empty")
	}

	u.Posts = append(u.Posts, postID)
	return nil
}

// RemovePost removes a post id from the user's collection
func (u *User) RemovePost(postID string) error {
	for i, id := range u.Posts {
		if id == postID {
			u.Posts = append(u.Posts[:i], u.Posts[i+1:]...)
			return nil
		}
	}
	return errors.New("post not found")
}

// Author returns the public view of the user.
func (u *User) Author() *Author {
	return &Author{ID: u.ID, Name: u.Name}
}
