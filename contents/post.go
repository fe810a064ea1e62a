package contents

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Post struct {
	ID        int64
	Title     string
	Content   string
	AuthorID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID int64) (post *Post, err error)
	Exists(ctx context.Context, postID int64) (exists bool, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID int64) (err error)
	List(ctx context.Context, params *ListPostsParams) (posts []*Post, err error)
	Count(ctx context.Context, params *ListPostsParams) (count int, err error)
}

// ListPostsParams filters posts. Zero values are ignored. Title and Content
// are case-insensitive substrings combined with OR. Limit 0 means no limit.
type ListPostsParams struct {
	AuthorID int64
	Title    string
	Content  string
	Offset   uint64
	Limit    uint64
}

type PostNotFoundError struct {
	ID int64
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %d not found", err.ID)
}

type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", err.Field)
}

var (
	ErrForbidden           = errors.New("only the author of the post can change it")
	ErrSearchTermsRequired = errors.New("title or content query parameter is required")
)
