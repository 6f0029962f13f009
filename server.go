package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"inkfeed/app/auth"
	"inkfeed/app/config"
	"inkfeed/app/gql"
	"inkfeed/app/repositories"
	"inkfeed/app/routes"
	"inkfeed/app/services"
	"inkfeed/app/storage"
)

// Server owns the HTTP server and the store behind it.
type Server struct {
	httpServer      *http.Server
	store           *repositories.Store
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_driver", cfg.StorageDriver,
	)

	verifier, err := auth.NewVerifier(cfg.SigningKey, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := repositories.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", store.Path())

	posts := store.Posts()
	users := store.Users()
	gate := services.NewGate(services.NewOwnershipGuard(posts), logger)
	postService := services.NewPostService(posts, users, files, gate, cfg.PostsPerPage, logger)
	authService := services.NewAuthService(users, verifier, gate, cfg.BcryptCost, logger)

	graphQL, err := gql.NewHandler(gql.NewResolver(authService, postService, logger), logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}

	router := routes.SetupRoutes(routes.Deps{
		AuthService: authService,
		PostService: postService,
		Files:       files,
		Verifier:    verifier,
		GraphQL:     graphQL,
		Logger:      logger,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      routes.WithCORS(router, cfg.CORSOrigins),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		store:           store,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		logger:          logger,
	}, nil
}

func newFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	if cfg.StorageDriver != config.DriverMinio {
		return storage.NewDiskStore(cfg.ImagesDir)
	}

	files, err := storage.NewMinioStore(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.UseSSL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := files.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return files, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}
