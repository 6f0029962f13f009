package controllers

import (
	"log/slog"
	"net/http"

	"inkfeed/app/auth"
	"inkfeed/app/services"
)

// AuthController handles signup, login and the caller's status
type AuthController struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger *slog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles creating an account
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	user, err := ac.authService.Signup(r.Context(), in)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusCreated, map[string]string{
		"message": "User created!",
		"userId":  user.ID,
	})
}

// Login handles exchanging credentials for a token
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	result, err := ac.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, result)
}

// GetStatus returns the caller's status line
func (ac *AuthController) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := ac.authService.Status(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": status})
}

// UpdateStatus replaces the caller's status line
func (ac *AuthController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	if err := id.Require(); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	var in services.StatusInput
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	if _, err := ac.authService.UpdateStatus(r.Context(), id, in); err != nil {
		sendError(w, r, ac.logger, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"message": "User updated."})
}
