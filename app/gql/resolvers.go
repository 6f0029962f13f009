package gql

import (
	"context"
	"log/slog"
	"time"

	"inkfeed/app/auth"
	"inkfeed/app/models"
	"inkfeed/app/services"

	"github.com/graphql-go/graphql"
)

// Resolver binds the schema to the services.
type Resolver struct {
	authService *services.AuthService
	postService *services.PostService
	logger      *slog.Logger
}

// NewResolver creates a new Resolver
func NewResolver(authService *services.AuthService, postService *services.PostService, logger *slog.Logger) *Resolver {
	return &Resolver{
		authService: authService,
		postService: postService,
		logger:      logger,
	}
}

func identity(p graphql.ResolveParams) (context.Context, auth.Identity) {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, auth.FromContext(ctx)
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func inputArg(args map[string]interface{}, name string) map[string]interface{} {
	m, _ := args[name].(map[string]interface{})
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func (r *Resolver) createUser(p graphql.ResolveParams) (interface{}, error) {
	ctx, _ := identity(p)
	in := inputArg(p.Args, "userInput")

	user, err := r.authService.Signup(ctx, services.SignupInput{
		Email:    stringArg(in, "email"),
		Password: stringArg(in, "password"),
		Name:     stringArg(in, "name"),
	})
	if err != nil {
		return nil, wrap(r.logger, "createUser", err)
	}
	return userMap(user), nil
}

func (r *Resolver) login(p graphql.ResolveParams) (interface{}, error) {
	ctx, _ := identity(p)

	result, err := r.authService.Login(ctx, stringArg(p.Args, "email"), stringArg(p.Args, "password"))
	if err != nil {
		return nil, wrap(r.logger, "login", err)
	}
	return map[string]interface{}{
		"token":  result.Token,
		"userId": result.UserID,
	}, nil
}

func (r *Resolver) posts(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)
	page, _ := p.Args["page"].(int)

	result, err := r.postService.ListPosts(ctx, id, page)
	if err != nil {
		return nil, wrap(r.logger, "posts", err)
	}

	posts := make([]map[string]interface{}, 0, len(result.Posts))
	for _, post := range result.Posts {
		posts = append(posts, postMap(post))
	}
	return map[string]interface{}{
		"posts":      posts,
		"totalPosts": result.TotalItems,
	}, nil
}

func (r *Resolver) post(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)

	post, err := r.postService.GetPost(ctx, id, stringArg(p.Args, "id"))
	if err != nil {
		return nil, wrap(r.logger, "post", err)
	}
	return postMap(post), nil
}

func (r *Resolver) user(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)

	user, err := r.authService.CurrentUser(ctx, id)
	if err != nil {
		return nil, wrap(r.logger, "user", err)
	}
	return userMap(user), nil
}

func (r *Resolver) createPost(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)
	in := inputArg(p.Args, "postInput")

	post, err := r.postService.CreatePost(ctx, id, services.PostInput{
		Title:    stringArg(in, "title"),
		Content:  stringArg(in, "content"),
		ImageURL: stringArg(in, "imageUrl"),
	})
	if err != nil {
		return nil, wrap(r.logger, "createPost", err)
	}
	return postMap(post), nil
}

func (r *Resolver) updatePost(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)
	in := inputArg(p.Args, "postInput")

	post, err := r.postService.UpdatePost(ctx, id, stringArg(p.Args, "id"), services.UpdatePostInput{
		Title:    stringArg(in, "title"),
		Content:  stringArg(in, "content"),
		ImageURL: stringArg(in, "imageUrl"),
	})
	if err != nil {
		return nil, wrap(r.logger, "updatePost", err)
	}
	return postMap(post), nil
}

func (r *Resolver) deletePost(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)

	if err := r.postService.DeletePost(ctx, id, stringArg(p.Args, "id")); err != nil {
		return nil, wrap(r.logger, "deletePost", err)
	}
	return true, nil
}

func (r *Resolver) updateStatus(p graphql.ResolveParams) (interface{}, error) {
	ctx, id := identity(p)

	user, err := r.authService.UpdateStatus(ctx, id, services.StatusInput{
		Status: stringArg(p.Args, "status"),
	})
	if err != nil {
		return nil, wrap(r.logger, "updateStatus", err)
	}
	return userMap(user), nil
}

func postMap(post *models.Post) map[string]interface{} {
	creator := map[string]interface{}{"_id": post.CreatorID}
	if post.Creator != nil {
		creator["name"] = post.Creator.Name
	}
	return map[string]interface{}{
		"_id":       post.ID,
		"title":     post.Title,
		"content":   post.Content,
		"imageUrl":  post.ImageURL,
		"creator":   creator,
		"createdAt": post.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt": post.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// userMap never exposes the password hash.
func userMap(user *models.User) map[string]interface{} {
	posts := user.Posts
	if posts == nil {
		posts = []string{}
	}
	return map[string]interface{}{
		"_id":    user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"status": user.Status,
		"posts":  posts,
	}
}
