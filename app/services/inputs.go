package services

import (
	"strings"

	"inkfeed/app/domain"
	"inkfeed/app/validation"
)

// PostInput is the client supplied content of a new post. ImageURL is the
// stored image path, set by the entry point after the upload is saved.
type PostInput struct {
	Title    string `json:"title" validate:"required,min=5" message:"Title is invalid."`
	Content  string `json:"content" validate:"required,min=5" message:"Content is invalid."`
	ImageURL string `json:"imageUrl" validate:"required" message:"No image provided."`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

// Validate reports every invalid field of the trimmed input.
func (in PostInput) Validate() domain.FieldErrors {
	in.normalize()
	return validation.Check(&in)
}

// UpdatePostInput replaces a post's content. An empty ImageURL keeps the
// current image.
type UpdatePostInput struct {
	Title    string `json:"title" validate:"required,min=5" message:"Title is invalid."`
	Content  string `json:"content" validate:"required,min=5" message:"Content is invalid."`
	ImageURL string `json:"imageUrl"`
}

func (in *UpdatePostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	// Clients that found no new file send the literal "undefined".
	if in.ImageURL == "undefined" {
		in.ImageURL = ""
	}
}

func (in UpdatePostInput) Validate() domain.FieldErrors {
	in.normalize()
	return validation.Check(&in)
}

// SignupInput registers a new user.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email" message:"Please enter a valid email."`
	Password string `json:"password" validate:"required,min=5" message:"Password too short!"`
	Name     string `json:"name" validate:"required" message:"Name is required."`
}

func (in *SignupInput) normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
}

// Validate checks the password length without surrounding spaces. The
// password itself is stored as typed.
func (in SignupInput) Validate() domain.FieldErrors {
	in.normalize()
	in.Password = strings.TrimSpace(in.Password)
	return validation.Check(&in)
}

// StatusInput replaces the caller's status line.
type StatusInput struct {
	Status string `json:"status" validate:"required" message:"Status is required."`
}

func (in *StatusInput) normalize() {
	in.Status = strings.TrimSpace(in.Status)
}

func (in StatusInput) Validate() domain.FieldErrors {
	in.normalize()
	return validation.Check(&in)
}
