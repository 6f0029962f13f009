package controllers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkfeed/app/auth"
	"inkfeed/app/middleware"
	"inkfeed/app/models"
	"inkfeed/app/repositories/mock"
	"inkfeed/app/services"
	"inkfeed/app/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type testApp struct {
	router   *mux.Router
	posts    *mock.PostRepository
	users    *mock.UserRepository
	files    *storage.DiskStore
	verifier *auth.Verifier
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	verifier, err := auth.NewVerifier("controller-secret", time.Hour)
	require.NoError(t, err)
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	app := &testApp{
		posts:    mock.NewPostRepository(),
		users:    mock.NewUserRepository(),
		files:    files,
		verifier: verifier,
	}

	gate := services.NewGate(services.NewOwnershipGuard(app.posts), logger)
	postService := services.NewPostService(app.posts, app.users, files, gate, 2, logger)
	authService := services.NewAuthService(app.users, verifier, gate, bcrypt.MinCost, logger)
	feed := NewFeedController(postService, files, logger)
	authController := NewAuthController(authService, logger)

	router := mux.NewRouter()
	router.Use(middleware.Authenticate(verifier, logger))

	router.HandleFunc("/auth/signup", authController.Signup).Methods("POST")
	router.HandleFunc("/auth/login", authController.Login).Methods("POST")
	router.HandleFunc("/auth/status", authController.GetStatus).Methods("GET")
	router.HandleFunc("/auth/status", authController.UpdateStatus).Methods("PATCH")

	router.HandleFunc("/feed/posts", feed.Index).Methods("GET")
	router.HandleFunc("/feed/posts", feed.Create).Methods("POST")
	router.HandleFunc("/feed/posts/{postId}", feed.Show).Methods("GET")
	router.HandleFunc("/feed/posts/{postId}", feed.Update).Methods("PUT")
	router.HandleFunc("/feed/posts/{postId}", feed.Delete).Methods("DELETE")
	router.HandleFunc("/post-image", feed.UploadImage).Methods("PUT")

	app.router = router
	return app
}

// login stores a user and returns a bearer token for it.
func (a *testApp) login(t *testing.T, email, name string) (string, *models.User) {
	t.Helper()
	user := &models.User{Email: email, Password: "$2a$04$notarealhash", Name: name}
	require.NoError(t, a.users.Create(user))
	token, err := a.verifier.Issue(user)
	require.NoError(t, err)
	return token, user
}

func (a *testApp) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// multipartBody builds a form with the given fields and an optional image.
func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}
