package services

import (
	"context"
	"errors"
	"log/slog"

	"inkfeed/app/auth"
	"inkfeed/app/domain"
	"inkfeed/app/models"
	"inkfeed/app/repositories"
	"inkfeed/app/storage"
)

// DefaultPerPage is the feed page size.
const DefaultPerPage = 2

// PostPage is one page of the feed.
type PostPage struct {
	Posts      []*models.Post
	TotalItems int
}

// PostService handles business logic for blog posts
type PostService struct {
	posts   repositories.PostRepository
	users   repositories.UserRepository
	files   storage.FileStore
	gate    *Gate
	perPage int
	logger  *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	files storage.FileStore,
	gate *Gate,
	perPage int,
	logger *slog.Logger,
) *PostService {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &PostService{
		posts:   posts,
		users:   users,
		files:   files,
		gate:    gate,
		perPage: perPage,
		logger:  logger,
	}
}

// ListPosts returns a page of the feed, newest first, with creators populated
func (s *PostService) ListPosts(ctx context.Context, id auth.Identity, page int) (*PostPage, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	total, err := s.posts.Count()
	if err != nil {
		return nil, domain.StoreFailure("count posts", err)
	}

	offset := (page - 1) * s.perPage
	posts, err := s.posts.List(s.perPage, offset)
	if err != nil {
		return nil, domain.StoreFailure("list posts", err)
	}

	authors := make(map[string]*models.User)
	for _, post := range posts {
		user, ok := authors[post.CreatorID]
		if !ok {
			user = s.loadCreator(ctx, post.CreatorID)
			authors[post.CreatorID] = user
		}
		s.attach(post, user)
	}

	return &PostPage{Posts: posts, TotalItems: total}, nil
}

// GetPost retrieves a single post with its creator
func (s *PostService) GetPost(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domain.NotFound("Could not find post.")
	}
	if err != nil {
		return nil, domain.StoreFailure("load post", err)
	}

	s.attach(post, s.loadCreator(ctx, post.CreatorID))
	return post, nil
}

// CreatePost stores a new post owned by the caller and records it on the
// caller's post collection.
func (s *PostService) CreatePost(ctx context.Context, id auth.Identity, in PostInput) (*models.Post, error) {
	adm, err := s.gate.Admit(ctx, Mutation{Op: OpCreatePost, Identity: id, Input: in})
	if err != nil {
		return nil, err
	}
	in.normalize()

	user, err := s.users.GetByID(adm.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, domain.Unauthenticated("Invalid user.")
	}
	if err != nil {
		return nil, domain.StoreFailure("load user", err)
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		CreatorID: adm.UserID,
	}
	if err := s.posts.Create(post); err != nil {
		return nil, domain.StoreFailure("create post", err)
	}

	if err := user.AddPost(post.ID); err != nil {
		return nil, domain.StoreFailure("link post", err)
	}
	user.Touch()
	if err := s.users.Update(user); err != nil {
		// Undo the post write so no post exists without its owner's reference.
		if delErr := s.posts.Delete(post.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back post",
				"post_id", post.ID, "user_id", user.ID, "error", delErr)
		}
		return nil, domain.StoreFailure("link post to user", err)
	}
	adm.Commit()

	if err := post.SetCreator(user); err != nil {
		return nil, domain.StoreFailure("populate creator", err)
	}
	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "user_id", user.ID)
	return post, nil
}

// UpdatePost replaces the content of a post the caller owns. A replaced image
// is removed once the update is stored.
func (s *PostService) UpdatePost(ctx context.Context, id auth.Identity, postID string, in UpdatePostInput) (*models.Post, error) {
	adm, err := s.gate.Admit(ctx, Mutation{Op: OpUpdatePost, Identity: id, PostID: postID, Input: in})
	if err != nil {
		return nil, err
	}
	in.normalize()

	post := adm.Post
	oldImage := post.ImageURL
	post.Title = in.Title
	post.Content = in.Content
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	post.Touch()

	if err := s.posts.Update(post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, domain.NotFound("Could not find post.")
		}
		return nil, domain.StoreFailure("update post", err)
	}
	adm.Commit()

	if post.ImageURL != oldImage {
		storage.Discard(ctx, s.files, s.logger, oldImage)
	}

	s.attach(post, s.loadCreator(ctx, post.CreatorID))
	return post, nil
}

// DeletePost removes a post the caller owns, its image, and the reference on
// the owner's post collection.
func (s *PostService) DeletePost(ctx context.Context, id auth.Identity, postID string) error {
	adm, err := s.gate.Admit(ctx, Mutation{Op: OpDeletePost, Identity: id, PostID: postID})
	if err != nil {
		return err
	}
	post := adm.Post

	if err := s.posts.Delete(post.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return domain.NotFound("Could not find post.")
		}
		return domain.StoreFailure("delete post", err)
	}
	adm.Commit()

	storage.Discard(ctx, s.files, s.logger, post.ImageURL)

	if err := s.unlinkPost(adm.UserID, post.ID); err != nil {
		s.logger.ErrorContext(ctx, "post deleted but owner still references it",
			"post_id", post.ID, "user_id", adm.UserID, "error", err)
		return domain.StoreFailure("unlink post from user", err)
	}

	s.logger.InfoContext(ctx, "post deleted", "post_id", post.ID, "user_id", adm.UserID)
	return nil
}

func (s *PostService) unlinkPost(userID, postID string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if err := user.RemovePost(postID); err != nil {
		// Not referenced, nothing to unlink.
		return nil
	}
	user.Touch()
	return s.users.Update(user)
}

func (s *PostService) loadCreator(ctx context.Context, userID string) *models.User {
	user, err := s.users.GetByID(userID)
	if err != nil {
		s.logger.WarnContext(ctx, "creator not found", "user_id", userID, "error", err)
		return nil
	}
	return user
}

// attach fills the creator view, falling back to the bare id.
func (s *PostService) attach(post *models.Post, user *models.User) {
	if user == nil || post.SetCreator(user) != nil {
		post.Creator = &models.Author{ID: post.CreatorID}
	}
}
