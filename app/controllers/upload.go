package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"inkfeed/app/domain"
	"inkfeed/app/storage"
)

// maxUploadSize bounds a multipart request.
const maxUploadSize = 10 << 20

// postForm is the decoded body of a post create or update.
type postForm struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`

	// uploaded is set when this request stored a new file.
	uploaded string
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readPostForm accepts either a JSON body or a multipart form with an
// optional "image" file. A stored upload replaces any image path in the body.
func readPostForm(w http.ResponseWriter, r *http.Request, files storage.FileStore) (*postForm, error) {
	form := &postForm{}
	if !isMultipart(r) {
		if err := decodeJSON(r, form); err != nil {
			return nil, err
		}
		return form, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, domain.Invalid("Invalid request body.", domain.FieldErrors{
			{Field: "body", Message: err.Error()},
		})
	}
	form.Title = r.FormValue("title")
	form.Content = r.FormValue("content")
	form.ImageURL = r.FormValue("image")

	path, err := saveUpload(r, files)
	if err != nil {
		return nil, err
	}
	if path != "" {
		form.ImageURL = path
		form.uploaded = path
	}
	return form, nil
}

// saveUpload stores the "image" file of a parsed multipart request. It
// returns an empty path when no acceptable image was sent.
func saveUpload(r *http.Request, files storage.FileStore) (string, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", domain.Invalid("Invalid request body.", domain.FieldErrors{
			{Field: "image", Message: err.Error()},
		})
	}
	defer file.Close()

	contentType, ok, err := storage.SniffImage(file)
	if err != nil {
		return "", domain.StoreFailure("read upload", err)
	}
	if !ok {
		return "", nil
	}

	path, err := files.Save(r.Context(), header.Filename, file, header.Size, contentType)
	if err != nil {
		return "", domain.StoreFailure("store upload", fmt.Errorf("save %s: %w", header.Filename, err))
	}
	return path, nil
}

// discardUpload removes a file stored by a request that then failed.
func discardUpload(ctx context.Context, files storage.FileStore, logger *slog.Logger, form *postForm) {
	if form != nil && form.uploaded != "" {
		storage.Discard(ctx, files, logger, form.uploaded)
	}
}
