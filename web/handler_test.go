package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/db/sqlite3"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/nasermirzaei89/inkwell/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *web.Handler {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite3.NewDB(ctx, ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, sqlite3.MigrateUp(ctx, db))

	postRepo := sqlite3.NewPostRepository(db)

	authSvc := authentication.NewService(
		sqlite3.NewUserRepository(db),
		authentication.NewTokenIssuer("test-secret", "inkwell", 0),
	)
	contentsSvc := contents.NewService(postRepo)
	discussSvc := discuss.NewService(sqlite3.NewCommentRepository(db), contentsSvc)
	feedSvc := feed.NewService(contentsSvc, discussSvc)

	h, err := web.NewHandler(authSvc, contentsSvc, discussSvc, feedSvc, web.Config{})
	require.NoError(t, err)

	return h
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)

		reader = bytes.NewReader(b)
	}

	r := httptest.NewRequest(method, target, reader)
	r.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, r)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

type tokenBody struct {
	Token string `json:"token"`
}

type messageBody struct {
	Message string `json:"message"`
}

type postBody struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  int64  `json:"UserId"`
}

type commentBody struct {
	ID       int64          `json:"id"`
	Title    string         `json:"title"`
	PostID   int64          `json:"PostId"`
	ParentID *int64         `json:"ParentId"`
	Replies  []*commentBody `json:"replies"`
}

type pageBody struct {
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	NextPage *string         `json:"nextPage"`
	Comments []*commentBody  `json:"comments"`
	Posts    []*feedPostBody `json:"posts"`
}

type feedPostBody struct {
	postBody

	Comments []*commentBody `json:"comments"`
}

func signUp(t *testing.T, h http.Handler, email string) *client {
	t.Helper()

	c := &client{t: t, h: h}

	w := c.do(http.MethodPost, "/auth/signup", map[string]string{
		"name":     "User " + email,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c.token = decode[tokenBody](t, w).Token
	require.NotEmpty(t, c.token)

	return c
}

func (c *client) createPost(title, content string) postBody {
	c.t.Helper()

	w := c.do(http.MethodPost, "/posts", map[string]string{"title": title, "content": content})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	return decode[struct {
		Post postBody `json:"post"`
	}](c.t, w).Post
}

func (c *client) createComment(postID int64, parentID *int64, title string) commentBody {
	c.t.Helper()

	body := map[string]any{"title": title, "content": "content of " + title, "PostId": postID}
	if parentID != nil {
		body["ParentId"] = *parentID
	}

	w := c.do(http.MethodPost, "/comments", body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	return decode[commentBody](c.t, w)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")

	anon := &client{t: t, h: h}

	t.Run("duplicate signup", func(t *testing.T) {
		w := anon.do(http.MethodPost, "/auth/signup", map[string]string{
			"name": "Jane", "email": "jane@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists.", decode[messageBody](t, w).Message)
	})

	t.Run("invalid signup", func(t *testing.T) {
		w := anon.do(http.MethodPost, "/auth/signup", map[string]string{"email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decode[web.ValidationError](t, w)
		assert.Len(t, body.Errors, 3)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		w := anon.do(http.MethodPost, "/auth/signup", map[string]string{
			"name": "Long", "email": "long@example.com", "password": strings.Repeat("p", 80),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decode[web.ValidationError](t, w)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "password", body.Errors[0].Field)
	})

	t.Run("signin", func(t *testing.T) {
		w := anon.do(http.MethodPost, "/auth/signin", map[string]string{
			"email": "jane@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode[tokenBody](t, w).Token)
	})

	t.Run("signin with wrong password", func(t *testing.T) {
		w := anon.do(http.MethodPost, "/auth/signin", map[string]string{
			"email": "jane@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email or password.", decode[messageBody](t, w).Message)
	})

	t.Run("missing token", func(t *testing.T) {
		w := anon.do(http.MethodGet, "/posts", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})

	t.Run("profile", func(t *testing.T) {
		w := jane.do(http.MethodGet, "/auth/me", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode[map[string]any](t, w)
		assert.Equal(t, "jane@example.com", body["email"])
		assert.NotContains(t, body, "passwordHash")
		assert.NotContains(t, body, "PasswordHash")
	})

	t.Run("token of a missing user", func(t *testing.T) {
		token, err := authentication.NewTokenIssuer("test-secret", "inkwell", 0).
			Issue(&authentication.User{ID: 999, Name: "Ghost", Email: "ghost@example.com"})
		require.NoError(t, err)

		ghost := &client{t: t, h: h, token: token}

		w := ghost.do(http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("token without a user id", func(t *testing.T) {
		token, err := authentication.NewTokenIssuer("test-secret", "inkwell", 0).
			Issue(&authentication.User{ID: 0, Name: "Nobody", Email: "nobody@example.com"})
		require.NoError(t, err)

		nobody := &client{t: t, h: h, token: token}

		w := nobody.do(http.MethodGet, "/posts", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Token is not valid", decode[messageBody](t, w).Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		bad := &client{t: t, h: h, token: "not-a-token"}

		w := bad.do(http.MethodGet, "/posts", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPosts(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")
	john := signUp(t, h, "john@example.com")

	post := jane.createPost("Hello", "World")
	assert.NotZero(t, post.UserID)

	t.Run("get", func(t *testing.T) {
		w := john.do(http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = john.do(http.MethodGet, "/posts/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Post not found", decode[messageBody](t, w).Message)

		w = john.do(http.MethodGet, "/posts/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update by owner keeps omitted fields", func(t *testing.T) {
		w := jane.do(http.MethodPut, fmt.Sprintf("/posts/%d", post.ID), map[string]string{"content": "X"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decode[struct {
			Post postBody `json:"post"`
		}](t, w).Post
		assert.Equal(t, "Hello", updated.Title)
		assert.Equal(t, "X", updated.Content)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		w := john.do(http.MethodPut, fmt.Sprintf("/posts/%d", post.ID), map[string]string{"title": "mine"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = john.do(http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("create requires fields", func(t *testing.T) {
		w := jane.do(http.MethodPost, "/posts", map[string]string{"title": "only title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("largest page size", func(t *testing.T) {
		w := jane.do(http.MethodGet, "/posts?page=2&limit=9223372036854775807", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		page := decode[pageBody](t, w)
		assert.Empty(t, page.Posts)
		assert.Nil(t, page.NextPage)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		for _, q := range []string{
			"page=0&limit=5",
			"page=-1&limit=5",
			"page=x&limit=5",
			"page=9223372036854775807&limit=2",
			"page=4611686018427387905&limit=2",
		} {
			w := jane.do(http.MethodGet, "/posts?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})
}

func TestDeletePostCascades(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")

	post := jane.createPost("Hello", "World")
	comment := jane.createComment(post.ID, nil, "c1")

	w := jane.do(http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = jane.do(http.MethodGet, fmt.Sprintf("/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPostsPagination(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")

	for i := range 25 {
		jane.createPost(fmt.Sprintf("post %d", i), "body")
	}

	w := jane.do(http.MethodGet, "/posts?page=2&limit=10&sort=new", nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[pageBody](t, w)
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Posts, 10)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, "http://example.com/posts?page=3&limit=10&sort=new", *page.NextPage)

	w = jane.do(http.MethodGet, "/posts?page=3&limit=10", nil)
	page = decode[pageBody](t, w)
	assert.Len(t, page.Posts, 5)
	assert.Nil(t, page.NextPage)

	w = jane.do(http.MethodGet, "/posts", nil)
	page = decode[pageBody](t, w)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
}

func TestPostCommentsPagination(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")
	post := jane.createPost("Hello", "World")

	for i := range 15 {
		jane.createComment(post.ID, nil, fmt.Sprintf("comment %d", i))
	}

	w := jane.do(http.MethodGet, fmt.Sprintf("/comments/post/%d?page=1&limit=10", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[pageBody](t, w)
	assert.Len(t, page.Comments, 10)
	require.NotNil(t, page.NextPage)
	assert.Contains(t, *page.NextPage, "page=2")

	w = jane.do(http.MethodGet, fmt.Sprintf("/comments/post/%d?page=2&limit=10", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	page = decode[pageBody](t, w)
	assert.Len(t, page.Comments, 5)
	assert.Nil(t, page.NextPage)

	w = jane.do(http.MethodGet, "/comments/post/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComments(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")
	john := signUp(t, h, "john@example.com")

	post := jane.createPost("Hello", "World")
	other := jane.createPost("Other", "Post")

	root := john.createComment(post.ID, nil, "root")
	reply := jane.createComment(post.ID, &root.ID, "reply")
	jane.createComment(post.ID, &reply.ID, "nested")
	jane.createComment(post.ID, &root.ID, "second reply")

	t.Run("tree", func(t *testing.T) {
		w := jane.do(http.MethodGet, fmt.Sprintf("/comments/post/%d", post.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[pageBody](t, w)
		require.Len(t, page.Comments, 1)
		require.Len(t, page.Comments[0].Replies, 2)
		assert.Equal(t, "reply", page.Comments[0].Replies[0].Title)
		assert.Len(t, page.Comments[0].Replies[0].Replies, 1)
		assert.Equal(t, "second reply", page.Comments[0].Replies[1].Title)
	})

	t.Run("reply to comment of another post", func(t *testing.T) {
		w := jane.do(http.MethodPost, "/comments", map[string]any{
			"title": "t", "content": "c", "PostId": other.ID, "ParentId": root.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing parent and post", func(t *testing.T) {
		w := jane.do(http.MethodPost, "/comments", map[string]any{
			"title": "t", "content": "c", "PostId": post.ID, "ParentId": 999,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = jane.do(http.MethodPost, "/comments", map[string]any{"title": "t", "content": "c", "PostId": 999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := jane.do(http.MethodPost, "/comments", map[string]any{"title": "t", "PostId": "one"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ownership", func(t *testing.T) {
		w := jane.do(http.MethodPut, fmt.Sprintf("/comments/%d", root.ID), map[string]string{"title": "mine"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = john.do(http.MethodPut, fmt.Sprintf("/comments/%d", root.ID), map[string]string{"content": "X"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "root", decode[commentBody](t, w).Title)
	})

	t.Run("search is flat", func(t *testing.T) {
		w := jane.do(http.MethodGet, "/comments?title=REPLY", nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[pageBody](t, w)
		assert.Equal(t, 2, page.Total)

		for _, c := range page.Comments {
			assert.Empty(t, c.Replies)
		}

		w = jane.do(http.MethodGet, "/comments", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Title or content query parameter is required", decode[messageBody](t, w).Message)
	})

	t.Run("deleting a comment removes its replies", func(t *testing.T) {
		w := john.do(http.MethodDelete, fmt.Sprintf("/comments/%d", root.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = jane.do(http.MethodGet, fmt.Sprintf("/comments/%d", reply.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFeed(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	jane := signUp(t, h, "jane@example.com")
	john := signUp(t, h, "john@example.com")

	hello := jane.createPost("Hello Go", "World")
	cooking := john.createPost("Cooking", "Pasta")

	root := john.createComment(hello.ID, nil, "root")
	jane.createComment(hello.ID, &root.ID, "reply")

	t.Run("all posts", func(t *testing.T) {
		w := jane.do(http.MethodGet, "/posts-comments/?page=1&limit=10", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		page := decode[pageBody](t, w)
		require.Len(t, page.Posts, 2)
		assert.Equal(t, hello.ID, page.Posts[0].ID)
		require.Len(t, page.Posts[0].Comments, 1)
		assert.Len(t, page.Posts[0].Comments[0].Replies, 1)
		assert.Equal(t, cooking.ID, page.Posts[1].ID)
		assert.NotNil(t, page.Posts[1].Comments)
		assert.Empty(t, page.Posts[1].Comments)
	})

	t.Run("own posts only", func(t *testing.T) {
		w := jane.do(http.MethodGet, fmt.Sprintf("/posts-comments/user/%d", hello.UserID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[pageBody](t, w)
		require.Len(t, page.Posts, 1)

		w = jane.do(http.MethodGet, fmt.Sprintf("/posts-comments/user/%d", cooking.UserID), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("search", func(t *testing.T) {
		w := jane.do(http.MethodGet, "/posts-comments/search?title=go", nil)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[pageBody](t, w)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, hello.ID, page.Posts[0].ID)

		w = jane.do(http.MethodGet, "/posts-comments/search", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	anon := &client{t: t, h: h}

	w := anon.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = anon.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "inkwell_http_requests_total"))

	w = anon.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
