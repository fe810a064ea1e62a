package discuss

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Comment struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64
	PostID    int64
	ParentID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) (err error)
	Find(ctx context.Context, commentID int64) (comment *Comment, err error)
	Update(ctx context.Context, comment *Comment) (err error)
	Delete(ctx context.Context, commentID int64) (err error)
	List(ctx context.Context, params *ListCommentsParams) (comments []*Comment, err error)
	Count(ctx context.Context, params *ListCommentsParams) (count int, err error)
}

// ListCommentsParams filters comments. Zero values are ignored. Title and
// Content are case-insensitive substrings combined with OR. Limit 0 means no
// limit.
type ListCommentsParams struct {
	PostID  int64
	Title   string
	Content string
	Offset  uint64
	Limit   uint64
}

type CommentNotFoundError struct {
	ID int64
}

func (err CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment with id %d not found", err.ID)
}

type ParentCommentNotFoundError struct {
	ID int64
}

func (err ParentCommentNotFoundError) Error() string {
	return fmt.Sprintf("can not reply to comment %d: comment does not exist", err.ID)
}

type PostNotFoundError struct {
	ID int64
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %d not found", err.ID)
}

// PostMismatchError is returned when a reply targets a comment of another post.
type PostMismatchError struct {
	ParentID     int64
	PostID       int64
	ParentPostID int64
}

func (err PostMismatchError) Error() string {
	return fmt.Sprintf("comment %d is not on post %d", err.ParentID, err.PostID)
}

type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", err.Field)
}

var (
	ErrForbidden           = errors.New("only the author of the comment can change it")
	ErrSearchTermsRequired = errors.New("title or content query parameter is required")
)
