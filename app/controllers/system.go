package controllers

import (
	"net/http"
)

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusNotFound, errorResponse{Message: "Not found."})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed."})
}
