package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkfeed/app/auth"
	"inkfeed/app/services"
	"inkfeed/app/storage"

	"github.com/gorilla/mux"
)

// FeedController handles HTTP requests for blog posts
type FeedController struct {
	postService *services.PostService
	files       storage.FileStore
	logger      *slog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(postService *services.PostService, files storage.FileStore, logger *slog.Logger) *FeedController {
	return &FeedController{
		postService: postService,
		files:       files,
		logger:      logger,
	}
}

// Index handles listing one page of posts
func (fc *FeedController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	result, err := fc.postService.ListPosts(r.Context(), auth.FromContext(r.Context()), page)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Fetched posts successfully.",
		"posts":      result.Posts,
		"totalItems": result.TotalItems,
	})
}

// Show handles displaying a single post
func (fc *FeedController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := fc.postService.GetPost(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["postId"])
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post fetched.",
		"post":    post,
	})
}

// Create handles creating a new post
func (fc *FeedController) Create(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := id.Require(); err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	form, err := readPostForm(w, r, fc.files)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	post, err := fc.postService.CreatePost(r.Context(), id, services.PostInput{
		Title:    form.Title,
		Content:  form.Content,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		discardUpload(r.Context(), fc.files, fc.logger, form)
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully!",
		"post":    post,
		"creator": post.Creator,
	})
}

// Update handles editing an existing post
func (fc *FeedController) Update(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := id.Require(); err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	form, err := readPostForm(w, r, fc.files)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	post, err := fc.postService.UpdatePost(r.Context(), id, mux.Vars(r)["postId"], services.UpdatePostInput{
		Title:    form.Title,
		Content:  form.Content,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		discardUpload(r.Context(), fc.files, fc.logger, form)
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post updated!",
		"post":    post,
	})
}

// Delete handles deleting a post
func (fc *FeedController) Delete(w http.ResponseWriter, r *http.Request) {
	err := fc.postService.DeletePost(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["postId"])
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"message": "Deleted post."})
}

// UploadImage stores an image ahead of a GraphQL create or update and returns
// its path.
func (fc *FeedController) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := auth.FromContext(r.Context()).Require(); err != nil {
		sendError(w, r, fc.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendJSON(w, http.StatusOK, map[string]string{"message": "No file provided!"})
		return
	}

	path, err := saveUpload(r, fc.files)
	if err != nil {
		sendError(w, r, fc.logger, err)
		return
	}
	if path == "" {
		sendJSON(w, http.StatusOK, map[string]string{"message": "No file provided!"})
		return
	}

	sendJSON(w, http.StatusCreated, map[string]string{
		"message":  "File stored.",
		"filePath": path,
	})
}
