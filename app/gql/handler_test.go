package gql

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inkfeed/app/auth"
	"inkfeed/app/middleware"
	"inkfeed/app/repositories/mock"
	"inkfeed/app/services"
	"inkfeed/app/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type gqlResponse struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

type testServer struct {
	handler http.Handler
	posts   *mock.PostRepository
	users   *mock.UserRepository
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	verifier, err := auth.NewVerifier("graphql-secret", time.Hour)
	require.NoError(t, err)
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	posts := mock.NewPostRepository()
	users := mock.NewUserRepository()
	gate := services.NewGate(services.NewOwnershipGuard(posts), logger)
	postService := services.NewPostService(posts, users, files, gate, 2, logger)
	authService := services.NewAuthService(users, verifier, gate, bcrypt.MinCost, logger)

	h, err := NewHandler(NewResolver(authService, postService, logger), logger)
	require.NoError(t, err)

	return &testServer{
		handler: middleware.Authenticate(verifier, logger)(h),
		posts:   posts,
		users:   users,
	}
}

func (s *testServer) exec(t *testing.T, token, query string, variables map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": variables})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, resp gqlResponse) float64 {
	t.Helper()
	require.NotEmpty(t, resp.Errors)
	code, _ := resp.Errors[0].Extensions["code"].(float64)
	return code
}

const createUser = `mutation($email: String!, $name: String!, $password: String!) {
	createUser(userInput: {email: $email, name: $name, password: $password}) { _id email status posts }
}`

const login = `query($email: String!, $password: String!) {
	login(email: $email, password: $password) { token userId }
}`

const createPost = `mutation($title: String!, $content: String!, $imageUrl: String) {
	createPost(postInput: {title: $title, content: $content, imageUrl: $imageUrl}) {
		_id title imageUrl creator { _id name } createdAt
	}
}`

func (s *testServer) signupAndLogin(t *testing.T, email, name string) (token, userID string) {
	t.Helper()
	resp := s.exec(t, "", createUser, map[string]interface{}{"email": email, "name": name, "password": "tester"})
	require.Empty(t, resp.Errors)

	resp = s.exec(t, "", login, map[string]interface{}{"email": email, "password": "tester"})
	require.Empty(t, resp.Errors)
	data := resp.Data["login"].(map[string]interface{})
	return data["token"].(string), data["userId"].(string)
}

func TestGraphQLAuth(t *testing.T) {
	s := setupTestServer(t)

	t.Run("create user", func(t *testing.T) {
		resp := s.exec(t, "", createUser, map[string]interface{}{
			"email": "duc@example.com", "name": "Duc", "password": "tester",
		})
		require.Empty(t, resp.Errors)

		user := resp.Data["createUser"].(map[string]interface{})
		assert.Equal(t, "duc@example.com", user["email"])
		assert.Equal(t, "I am new!", user["status"])
		assert.Equal(t, []interface{}{}, user["posts"])
	})

	t.Run("create user validation", func(t *testing.T) {
		resp := s.exec(t, "", createUser, map[string]interface{}{
			"email": "bad", "name": "Duc", "password": "abc",
		})
		assert.Equal(t, float64(http.StatusUnprocessableEntity), errorCode(t, resp))

		data, ok := resp.Errors[0].Extensions["data"].([]interface{})
		require.True(t, ok)
		assert.Len(t, data, 2)
	})

	t.Run("login", func(t *testing.T) {
		resp := s.exec(t, "", login, map[string]interface{}{"email": "duc@example.com", "password": "tester"})
		require.Empty(t, resp.Errors)
		assert.NotEmpty(t, resp.Data["login"].(map[string]interface{})["token"])

		resp = s.exec(t, "", login, map[string]interface{}{"email": "duc@example.com", "password": "wrong"})
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
	})

	t.Run("user and status", func(t *testing.T) {
		token, userID := s.signupAndLogin(t, "status@example.com", "Status")

		resp := s.exec(t, token, `mutation { updateStatus(status: "Busy") { _id status } }`, nil)
		require.Empty(t, resp.Errors)
		assert.Equal(t, "Busy", resp.Data["updateStatus"].(map[string]interface{})["status"])

		resp = s.exec(t, token, `{ user { _id status } }`, nil)
		require.Empty(t, resp.Errors)
		user := resp.Data["user"].(map[string]interface{})
		assert.Equal(t, userID, user["_id"])
		assert.Equal(t, "Busy", user["status"])

		resp = s.exec(t, "", `{ user { _id } }`, nil)
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
	})
}

func TestGraphQLPosts(t *testing.T) {
	s := setupTestServer(t)
	u1Token, u1ID := s.signupAndLogin(t, "u1@example.com", "User One")
	u2Token, _ := s.signupAndLogin(t, "u2@example.com", "User Two")

	var postID string

	t.Run("create post", func(t *testing.T) {
		resp := s.exec(t, u1Token, createPost, map[string]interface{}{
			"title": "GraphQL post", "content": "Created through GraphQL", "imageUrl": "images/g.png",
		})
		require.Empty(t, resp.Errors)

		post := resp.Data["createPost"].(map[string]interface{})
		postID = post["_id"].(string)
		creator := post["creator"].(map[string]interface{})
		assert.Equal(t, u1ID, creator["_id"])
		assert.Equal(t, "User One", creator["name"])
	})

	t.Run("anonymous create", func(t *testing.T) {
		resp := s.exec(t, "", createPost, map[string]interface{}{
			"title": "GraphQL post", "content": "Created through GraphQL", "imageUrl": "images/g.png",
		})
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
		assert.Nil(t, resp.Data)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := s.exec(t, "not-a-token", `{ posts { totalPosts } }`, nil)
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
		assert.Equal(t, "Invalid credential.", resp.Errors[0].Message)
	})

	t.Run("list posts", func(t *testing.T) {
		resp := s.exec(t, u2Token, `{ posts(page: 1) { totalPosts posts { _id title creator { name } } } }`, nil)
		require.Empty(t, resp.Errors)

		data := resp.Data["posts"].(map[string]interface{})
		assert.Equal(t, float64(1), data["totalPosts"])
		posts := data["posts"].([]interface{})
		require.Len(t, posts, 1)
		assert.Equal(t, postID, posts[0].(map[string]interface{})["_id"])
	})

	t.Run("single post", func(t *testing.T) {
		resp := s.exec(t, u2Token, `query($id: ID!) { post(id: $id) { title } }`, map[string]interface{}{"id": postID})
		require.Empty(t, resp.Errors)
		assert.Equal(t, "GraphQL post", resp.Data["post"].(map[string]interface{})["title"])

		resp = s.exec(t, u2Token, `{ post(id: "missing") { title } }`, nil)
		assert.Equal(t, float64(http.StatusNotFound), errorCode(t, resp))
	})

	const updatePost = `mutation($id: ID!, $title: String!, $content: String!, $imageUrl: String) {
		updatePost(id: $id, postInput: {title: $title, content: $content, imageUrl: $imageUrl}) { title imageUrl }
	}`

	t.Run("update by other user", func(t *testing.T) {
		resp := s.exec(t, u2Token, updatePost, map[string]interface{}{
			"id": postID, "title": "Taken over", "content": "Taken over content",
		})
		assert.Equal(t, float64(http.StatusForbidden), errorCode(t, resp))
	})

	t.Run("update with short title", func(t *testing.T) {
		resp := s.exec(t, u1Token, updatePost, map[string]interface{}{
			"id": postID, "title": "Hi", "content": "Good enough content",
		})
		assert.Equal(t, float64(http.StatusUnprocessableEntity), errorCode(t, resp))
	})

	t.Run("update keeps image", func(t *testing.T) {
		resp := s.exec(t, u1Token, updatePost, map[string]interface{}{
			"id": postID, "title": "Renamed post", "content": "Good enough content", "imageUrl": "undefined",
		})
		require.Empty(t, resp.Errors)
		post := resp.Data["updatePost"].(map[string]interface{})
		assert.Equal(t, "Renamed post", post["title"])
		assert.Equal(t, "images/g.png", post["imageUrl"])
	})

	t.Run("delete", func(t *testing.T) {
		const deletePost = `mutation($id: ID!) { deletePost(id: $id) }`

		resp := s.exec(t, u2Token, deletePost, map[string]interface{}{"id": postID})
		assert.Equal(t, float64(http.StatusForbidden), errorCode(t, resp))

		resp = s.exec(t, u1Token, deletePost, map[string]interface{}{"id": postID})
		require.Empty(t, resp.Errors)
		assert.Equal(t, true, resp.Data["deletePost"])

		resp = s.exec(t, u1Token, deletePost, map[string]interface{}{"id": postID})
		assert.Equal(t, float64(http.StatusNotFound), errorCode(t, resp))

		user, err := s.users.GetByID(u1ID)
		require.NoError(t, err)
		assert.Empty(t, user.Posts)
	})
}

func TestHandlerTransport(t *testing.T) {
	s := setupTestServer(t)

	t.Run("get request", func(t *testing.T) {
		q := url.Values{}
		q.Set("query", `{ posts { totalPosts } }`)
		req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp gqlResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
	})

	t.Run("get refuses mutations", func(t *testing.T) {
		tests := []struct {
			name      string
			query     string
			operation string
		}{
			{name: "anonymous mutation", query: `mutation { deletePost(id: "p1") }`},
			{
				name:      "named mutation",
				query:     `query Feed { posts { totalPosts } } mutation Drop { deletePost(id: "p1") }`,
				operation: "Drop",
			},
			{
				name:  "mutation among queries",
				query: `query Feed { posts { totalPosts } } mutation Drop { deletePost(id: "p1") }`,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				q := url.Values{}
				q.Set("query", tt.query)
				if tt.operation != "" {
					q.Set("operationName", tt.operation)
				}
				req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
				w := httptest.NewRecorder()
				s.handler.ServeHTTP(w, req)

				assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
				assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
			})
		}
	})

	t.Run("get runs a named query", func(t *testing.T) {
		q := url.Values{}
		q.Set("query", `query Feed { posts { totalPosts } } mutation Drop { deletePost(id: "p1") }`)
		q.Set("operationName", "Feed")
		req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp gqlResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(http.StatusUnauthorized), errorCode(t, resp))
	})

	t.Run("missing query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader([]byte(`{"query":`)))
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/graphql", nil)
		w := httptest.NewRecorder()
		s.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
