package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"inkfeed/app/domain"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Message string             `json:"message"`
	Data    domain.FieldErrors `json:"data,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError maps err to its status. Store failures are logged with their
// cause and answered without detail.
func sendError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	de := domain.As(err)
	if de.Kind == domain.KindStore {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", de,
		)
	}
	sendJSON(w, de.StatusCode(), errorResponse{
		Message: de.PublicMessage(),
		Data:    de.Fields,
	})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("Invalid request body.", domain.FieldErrors{
			{Field: "body", Message: err.Error()},
		})
	}
	return nil
}
