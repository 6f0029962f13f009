package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"inkfeed/app/auth"
	"inkfeed/app/models"
	"inkfeed/app/repositories/mock"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeFiles struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeFiles) Save(_ context.Context, name string, _ io.Reader, _ int64, _ string) (string, error) {
	return "images/" + name, nil
}

func (f *fakeFiles) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeFiles) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

type fixture struct {
	posts    *mock.PostRepository
	users    *mock.UserRepository
	files    *fakeFiles
	logs     *bytes.Buffer
	gate     *Gate
	verifier *auth.Verifier
	postSvc  *PostService
	authSvc  *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	verifier, err := auth.NewVerifier("test-secret", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		posts:    mock.NewPostRepository(),
		users:    mock.NewUserRepository(),
		files:    &fakeFiles{},
		logs:     logs,
		verifier: verifier,
	}
	f.gate = NewGate(NewOwnershipGuard(f.posts), logger)
	f.postSvc = NewPostService(f.posts, f.users, f.files, f.gate, 2, logger)
	f.authSvc = NewAuthService(f.users, verifier, f.gate, bcrypt.MinCost, logger)
	return f
}

// user stores a user directly and returns its identity.
func (f *fixture) user(t *testing.T, email, name string) auth.Identity {
	t.Helper()
	u := &models.User{Email: email, Password: "$2a$04$notarealhash", Name: name}
	require.NoError(t, f.users.Create(u))
	return auth.Authenticated(u.ID, email)
}

func (f *fixture) createPost(t *testing.T, id auth.Identity, title string) *models.Post {
	t.Helper()
	post, err := f.postSvc.CreatePost(context.Background(), id, PostInput{
		Title:    title,
		Content:  "Some content for the post",
		ImageURL: "images/" + title + ".png",
	})
	require.NoError(t, err)
	return post
}
