package routes

import (
	"log/slog"
	"net/http"

	"inkfeed/app/auth"
	"inkfeed/app/controllers"
	"inkfeed/app/middleware"
	"inkfeed/app/services"
	"inkfeed/app/storage"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Deps holds everything the router hands out to controllers.
type Deps struct {
	AuthService *services.AuthService
	PostService *services.PostService
	Files       storage.FileStore
	Verifier    *auth.Verifier
	GraphQL     http.Handler
	Logger      *slog.Logger
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	// Apply global middleware
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Authenticate(deps.Verifier, deps.Logger))

	authController := controllers.NewAuthController(deps.AuthService, deps.Logger)
	feedController := controllers.NewFeedController(deps.PostService, deps.Files, deps.Logger)

	router.HandleFunc("/health", controllers.Health).Methods("GET")

	// Auth endpoints. Registered on the root router so a method mismatch
	// reaches MethodNotAllowedHandler.
	router.HandleFunc("/auth/signup", authController.Signup).Methods("PUT", "POST")
	router.HandleFunc("/auth/login", authController.Login).Methods("POST")
	router.HandleFunc("/auth/status", authController.GetStatus).Methods("GET")
	router.HandleFunc("/auth/status", authController.UpdateStatus).Methods("PATCH")

	// Feed endpoints
	router.HandleFunc("/feed/posts", feedController.Index).Methods("GET")
	router.HandleFunc("/feed/posts", feedController.Create).Methods("POST")
	router.HandleFunc("/feed/posts/{postId}", feedController.Show).Methods("GET")
	router.HandleFunc("/feed/posts/{postId}", feedController.Update).Methods("PUT")
	router.HandleFunc("/feed/posts/{postId}", feedController.Delete).Methods("DELETE")

	router.HandleFunc("/post-image", feedController.UploadImage).Methods("PUT")

	if deps.GraphQL != nil {
		router.Handle("/graphql", deps.GraphQL).Methods("GET", "POST")
	}

	// Uploaded images
	router.PathPrefix("/" + storage.URLPrefix + "/").Handler(deps.Files).Methods("GET", "HEAD")

	return router
}

// WithCORS wraps h so browsers on the given origins can call the API.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}).Handler(h)
}
