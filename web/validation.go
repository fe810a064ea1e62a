package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/nasermirzaei89/inkwell/authentication"
)

const (
	maxBodyBytes      = 1 << 20
	minPasswordLength = 6
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a request before it reaches a service.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (err *ValidationError) Error() string {
	msgs := make([]string, 0, len(err.Errors))
	for _, fe := range err.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

type validator struct {
	errs []FieldError
}

func (v *validator) check(ok bool, field, message string) {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: message})
	}
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}

	return &ValidationError{Errors: v.errs}
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// optionalNotBlank accepts an omitted field but not an empty one.
func optionalNotBlank(s *string) bool {
	return s == nil || notBlank(*s)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)

	return err == nil && addr.Address == strings.TrimSpace(s)
}

// decodeJSON reads a JSON object body into dst. Type mismatches are reported
// per field.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Errors: []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Valid %s is required", typeErr.Field),
		}}}
	}

	if errors.Is(err, io.EOF) {
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: "Request body is required"}}}
	}

	return &ValidationError{Errors: []FieldError{{Field: "body", Message: "Request body must be valid JSON"}}}
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Errors: []FieldError{{
			Field:   name,
			Message: fmt.Sprintf("Valid %s is required", name),
		}}}
	}

	return id, nil
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *signUpRequest) validate() error {
	var v validator

	v.check(notBlank(req.Name), "name", "Name is required")
	v.check(validEmail(req.Email), "email", "Valid email is required")
	v.check(len(req.Password) >= minPasswordLength, "password",
		fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	v.check(len(req.Password) <= authentication.MaxPasswordLength, "password",
		fmt.Sprintf("Password must be at most %d bytes long", authentication.MaxPasswordLength))

	return v.err()
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *signInRequest) validate() error {
	var v validator

	v.check(validEmail(req.Email), "email", "Valid email is required")
	v.check(req.Password != "", "password", "Password is required")

	return v.err()
}

type postRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (req *postRequest) validateCreate() error {
	var v validator

	v.check(req.Title != nil && notBlank(*req.Title), "title", "Title is required")
	v.check(req.Content != nil && notBlank(*req.Content), "content", "Content is required")

	return v.err()
}

func (req *postRequest) validateUpdate() error {
	var v validator

	v.check(optionalNotBlank(req.Title), "title", "Title cannot be empty")
	v.check(optionalNotBlank(req.Content), "content", "Content cannot be empty")

	return v.err()
}

type createCommentRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PostID   *int64 `json:"PostId"`
	ParentID *int64 `json:"ParentId"`
}

func (req *createCommentRequest) validate() error {
	var v validator

	v.check(req.PostID != nil && *req.PostID > 0, "PostId", "Valid PostId is required")
	v.check(notBlank(req.Title), "title", "Title is required")
	v.check(notBlank(req.Content), "content", "Content is required")
	v.check(req.ParentID == nil || *req.ParentID > 0, "ParentId", "Valid ParentId is required")

	return v.err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
