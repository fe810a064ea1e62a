package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/nasermirzaei89/inkwell/pagination"
)

const internalErrorMessage = "Internal server error"

var errUnauthenticated = errors.New("access denied! you are not authenticated")

type messageResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type errorRule struct {
	match  func(err error) (message string, ok bool)
	status int
}

// sentinel matches any of targets and answers with message.
func sentinel(status int, message string, targets ...error) errorRule {
	return errorRule{
		status: status,
		match: func(err error) (string, bool) {
			for _, target := range targets {
				if errors.Is(err, target) {
					return message, true
				}
			}

			return "", false
		},
	}
}

// kind matches errors of type T. An empty message answers with the text of
// the matched error.
func kind[T error](status int, message string) errorRule {
	return errorRule{
		status: status,
		match: func(err error) (string, bool) {
			var target T
			if !errors.As(err, &target) {
				return "", false
			}

			if message == "" {
				return target.Error(), true
			}

			return message, true
		},
	}
}

// errorRules maps error kinds to responses. The first match wins. Errors
// matching no rule answer 500 without detail.
var errorRules = []errorRule{
	sentinel(http.StatusBadRequest, "Page and limit must be positive integers", pagination.ErrInvalidPagination),
	sentinel(http.StatusBadRequest, "Title or content query parameter is required",
		contents.ErrSearchTermsRequired, discuss.ErrSearchTermsRequired),
	kind[contents.MissingFieldError](http.StatusBadRequest, ""),
	kind[discuss.MissingFieldError](http.StatusBadRequest, ""),
	kind[discuss.PostMismatchError](http.StatusBadRequest, ""),
	kind[discuss.ParentCommentNotFoundError](http.StatusNotFound, "You can't reply to a non-existing comment"),
	kind[contents.PostNotFoundError](http.StatusNotFound, "Post not found"),
	kind[discuss.PostNotFoundError](http.StatusNotFound, "Post not found"),
	kind[discuss.CommentNotFoundError](http.StatusNotFound, "Comment not found"),
	sentinel(http.StatusForbidden, "Forbidden", contents.ErrForbidden, discuss.ErrForbidden, feed.ErrForbidden),
	kind[authentication.UserNotFoundError](http.StatusNotFound, "User not found"),
	kind[authentication.UserAlreadyExistsError](http.StatusBadRequest, "User already exists."),
	sentinel(http.StatusBadRequest, "Invalid email or password.", authentication.ErrInvalidCredentials),
	sentinel(http.StatusBadRequest, "Password must be at most 72 bytes long", authentication.ErrPasswordTooLong),
	sentinel(http.StatusUnauthorized, "Access Denied! You are not authenticated", errUnauthenticated),
	sentinel(http.StatusForbidden, "Token is not valid", authentication.ErrInvalidToken, authentication.ErrTokenExpired),
}

func toHTTP(err error) (int, string) {
	for _, rule := range errorRules {
		if message, ok := rule.match(err); ok {
			return rule.status, message
		}
	}

	return http.StatusInternalServerError, internalErrorMessage
}

// writeError answers with the status of err. Validation errors carry the
// list of failed fields.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, validationErr)

		return
	}

	status, message := toHTTP(err)

	if status == http.StatusInternalServerError {
		loggerFromContext(r.Context()).ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	}

	writeJSON(w, status, messageResponse{
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
