package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/nasermirzaei89/inkwell/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		header        string
		expectedToken string
		expectedOK    bool
	}{
		{name: "empty", header: "", expectedOK: false},
		{name: "bearer token", header: "Bearer abc.def", expectedToken: "abc.def", expectedOK: true},
		{name: "scheme is case insensitive", header: "bearer abc", expectedToken: "abc", expectedOK: true},
		{name: "missing token", header: "Bearer ", expectedOK: false},
		{name: "blank token", header: "Bearer    ", expectedOK: false},
		{name: "other scheme", header: "Basic dXNlcjpwYXNz", expectedOK: false},
		{name: "token only", header: "abc.def.ghi", expectedOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, ok := bearerToken(tt.header)

			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedToken, token)
		})
	}
}

func TestToHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "invalid pagination",
			err:             fmt.Errorf("failed to parse page %q: %w", "x", pagination.ErrInvalidPagination),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Page and limit must be positive integers",
		},
		{
			name:            "missing search terms",
			err:             discuss.ErrSearchTermsRequired,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Title or content query parameter is required",
		},
		{
			name:            "missing field",
			err:             contents.MissingFieldError{Field: "title"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "title is required",
		},
		{
			name:            "post mismatch",
			err:             fmt.Errorf("wrapped: %w", discuss.PostMismatchError{ParentID: 3, PostID: 1, ParentPostID: 2}),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "comment 3 is not on post 1",
		},
		{
			name:            "wrapped post not found",
			err:             fmt.Errorf("failed to find post: %w", contents.PostNotFoundError{ID: 1}),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Post not found",
		},
		{
			name:            "comment not found",
			err:             discuss.CommentNotFoundError{ID: 1},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Comment not found",
		},
		{
			name:            "parent not found",
			err:             discuss.ParentCommentNotFoundError{ID: 1},
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "You can't reply to a non-existing comment",
		},
		{
			name:            "forbidden feed",
			err:             feed.ErrForbidden,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Forbidden",
		},
		{
			name:            "duplicate user",
			err:             authentication.UserAlreadyExistsError{Email: "a@b.c"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "User already exists.",
		},
		{
			name:            "invalid credentials",
			err:             authentication.ErrInvalidCredentials,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid email or password.",
		},
		{
			name:            "password too long",
			err:             fmt.Errorf("failed to hash password: %w", authentication.ErrPasswordTooLong),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Password must be at most 72 bytes long",
		},
		{
			name:            "missing token",
			err:             errUnauthenticated,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Access Denied! You are not authenticated",
		},
		{
			name:            "expired token",
			err:             authentication.ErrTokenExpired,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "Token is not valid",
		},
		{
			name:            "unknown error",
			err:             errors.New("disk on fire"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, message := toHTTP(tt.err)

			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}

func TestSignUpRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		req            signUpRequest
		expectedFields []string
	}{
		{
			name: "valid",
			req:  signUpRequest{Name: "Jane", Email: "jane@example.com", Password: "secret"},
		},
		{
			name:           "everything wrong",
			req:            signUpRequest{Name: " ", Email: "jane", Password: "12345"},
			expectedFields: []string{"name", "email", "password"},
		},
		{
			name:           "display name in email",
			req:            signUpRequest{Name: "Jane", Email: "Jane <jane@example.com>", Password: "secret"},
			expectedFields: []string{"email"},
		},
		{
			name: "longest password bcrypt accepts",
			req:  signUpRequest{Name: "Jane", Email: "jane@example.com", Password: strings.Repeat("p", 72)},
		},
		{
			name:           "password over 72 bytes",
			req:            signUpRequest{Name: "Jane", Email: "jane@example.com", Password: strings.Repeat("p", 80)},
			expectedFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.req.validate()
			if tt.expectedFields == nil {
				require.NoError(t, err)

				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)

			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}

			assert.Equal(t, tt.expectedFields, fields)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		expectedField string
	}{
		{name: "valid", body: `{"title":"t","content":"c","PostId":1}`},
		{name: "empty body", body: ``, expectedField: "body"},
		{name: "broken json", body: `{"title":`, expectedField: "body"},
		{name: "wrong type", body: `{"PostId":"one"}`, expectedField: "PostId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(tt.body))

			var req createCommentRequest

			err := decodeJSON(r, &req)
			if tt.expectedField == "" {
				require.NoError(t, err)
				require.NotNil(t, req.PostID)
				assert.Equal(t, int64(1), *req.PostID)

				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Len(t, validationErr.Errors, 1)
			assert.Equal(t, tt.expectedField, validationErr.Errors[0].Field)
		})
	}
}

func TestPathID(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		value      string
		expectedID int64
	}{
		{value: "12", expectedID: 12},
		{value: "0"},
		{value: "-3"},
		{value: "abc"},
	} {
		r := httptest.NewRequest(http.MethodGet, "/posts/"+tt.value, nil)
		r.SetPathValue("postId", tt.value)

		id, err := pathID(r, "postId")
		if tt.expectedID == 0 {
			require.Error(t, err, tt.value)

			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.expectedID, id)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "panic before writing",
			handler: func(http.ResponseWriter, *http.Request) {
				panic("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Internal server error"}` + "\n",
		},
		{
			name: "panic after writing",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte("partial"))

				panic("boom")
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   "partial",
		},
		{
			name: "no panic",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			recoverMiddleware(tt.handler).ServeHTTP(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}
