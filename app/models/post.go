package models

import (
	"errors"
	"time"

	"inkfeed/app/validation"
)

// Validate checks the stored shape of a post
func (p *Post) Validate() error {
	if errs := validation.Check(p); len(errs) > 0 {
		return errs
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
}

// Touch records a modification.
func (p *Post) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// IsOwnedBy reports whether userID created the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.CreatorID == userID
}

// SetCreator populates the public creator view. It refuses a user other than the
// one recorded as creator.
func (p *Post) SetCreator(user *User) error {
	if user == nil {
		return errors.New("creator cannot be nil")
	}
	if p.CreatorID != "" && p.CreatorID != user.ID {
		return errors.New("creator does not match post")
	}

	p.CreatorID = user.ID
	p.Creator = user.Author()
	return nil
}

// Document returns the copy of the post that is persisted: the populated creator
// view is never stored.
func (p *Post) Document() *Post {
	doc := *p
	doc.Creator = nil
	return &doc
}
