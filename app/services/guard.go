package services

import (
	"errors"

	"inkfeed/app/auth"
	"inkfeed/app/domain"
	"inkfeed/app/models"
	"inkfeed/app/repositories"
)

// OwnershipGuard decides whether a caller may modify a post.
type OwnershipGuard struct {
	posts repositories.PostRepository
}

// NewOwnershipGuard creates a new OwnershipGuard
func NewOwnershipGuard(posts repositories.PostRepository) *OwnershipGuard {
	return &OwnershipGuard{posts: posts}
}

// Authorize loads the post and returns it only when the caller created it.
// Anonymous callers are refused before the store is read.
func (g *OwnershipGuard) Authorize(id auth.Identity, postID string) (*models.Post, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	post, err := g.posts.GetByID(postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domain.NotFound("Could not find post.")
	}
	if err != nil {
		return nil, domain.StoreFailure("load post", err)
	}

	if !post.IsOwnedBy(id.UserID) {
		return nil, domain.Forbidden("Not authorized!")
	}
	return post, nil
}
