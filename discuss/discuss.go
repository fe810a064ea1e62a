package discuss

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nasermirzaei89/inkwell/pagination"
)

// PostChecker reports whether a post exists.
type PostChecker interface {
	Exists(ctx context.Context, postID int64) (exists bool, err error)
}

type Service struct {
	commentRepo CommentRepository
	posts       PostChecker
}

func NewService(commentRepo CommentRepository, posts PostChecker) *Service {
	return &Service{
		commentRepo: commentRepo,
		posts:       posts,
	}
}

type CreateCommentRequest struct {
	PostID   int64
	AuthorID int64
	ParentID *int64
	Title    string
	Content  string
}

func (svc *Service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, MissingFieldError{Field: "title"}
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, MissingFieldError{Field: "content"}
	}

	if req.PostID <= 0 {
		return nil, MissingFieldError{Field: "PostId"}
	}

	err := svc.ensurePostExists(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := svc.commentRepo.Find(ctx, *req.ParentID)
		if err != nil {
			var commentNotFoundErr CommentNotFoundError
			if errors.As(err, &commentNotFoundErr) {
				return nil, ParentCommentNotFoundError{ID: *req.ParentID}
			}

			return nil, fmt.Errorf("failed to find parent comment: %w", err)
		}

		if parent.PostID != req.PostID {
			return nil, PostMismatchError{
				ParentID:     parent.ID,
				PostID:       req.PostID,
				ParentPostID: parent.PostID,
			}
		}
	}

	timeNow := time.Now()

	comment := &Comment{
		Title:     title,
		Content:   content,
		AuthorID:  req.AuthorID,
		PostID:    req.PostID,
		ParentID:  req.ParentID,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	err = svc.commentRepo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return comment, nil
}

func (svc *Service) GetComment(ctx context.Context, commentID int64) (*Comment, error) {
	comment, err := svc.commentRepo.Find(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

// UpdateCommentRequest changes the non-empty fields only.
type UpdateCommentRequest struct {
	ID      int64
	ActorID int64
	Title   string
	Content string
}

func (svc *Service) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	comment, err := svc.ownedComment(ctx, req.ID, req.ActorID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		comment.Title = title
	}

	if content := strings.TrimSpace(req.Content); content != "" {
		comment.Content = content
	}

	comment.UpdatedAt = time.Now()

	err = svc.commentRepo.Update(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes the comment and, through the storage cascade, all of
// its replies.
func (svc *Service) DeleteComment(ctx context.Context, commentID, actorID int64) error {
	_, err := svc.ownedComment(ctx, commentID, actorID)
	if err != nil {
		return err
	}

	err = svc.commentRepo.Delete(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

type CommentTreePage struct {
	pagination.Result

	Comments []*CommentNode
}

// ListPostComments returns one page of the comments of a post arranged as a
// forest. Replies whose parent falls outside the page become roots.
func (svc *Service) ListPostComments(
	ctx context.Context,
	postID int64,
	window pagination.Window,
) (*CommentTreePage, error) {
	err := svc.ensurePostExists(ctx, postID)
	if err != nil {
		return nil, err
	}

	params := &ListCommentsParams{
		PostID: postID,
		Offset: window.Offset(),
		Limit:  window.Limit(),
	}

	comments, err := svc.commentRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	total, err := svc.commentRepo.Count(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	return &CommentTreePage{
		Result:   pagination.NewResult(window, total),
		Comments: BuildTree(comments),
	}, nil
}

type SearchCommentsRequest struct {
	Title   string
	Content string
	Window  pagination.Window
}

type CommentPage struct {
	pagination.Result

	Comments []*Comment
}

// SearchComments matches title or content case-insensitively. The result is
// a flat page, not a forest.
func (svc *Service) SearchComments(ctx context.Context, req SearchCommentsRequest) (*CommentPage, error) {
	if req.Title == "" && req.Content == "" {
		return nil, ErrSearchTermsRequired
	}

	params := &ListCommentsParams{
		Title:   req.Title,
		Content: req.Content,
		Offset:  req.Window.Offset(),
		Limit:   req.Window.Limit(),
	}

	comments, err := svc.commentRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search comments: %w", err)
	}

	total, err := svc.commentRepo.Count(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	return &CommentPage{
		Result:   pagination.NewResult(req.Window, total),
		Comments: comments,
	}, nil
}

// CommentTree returns every comment of a post as a forest.
func (svc *Service) CommentTree(ctx context.Context, postID int64) ([]*CommentNode, error) {
	comments, err := svc.commentRepo.List(ctx, &ListCommentsParams{PostID: postID})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %d: %w", postID, err)
	}

	return BuildTree(comments), nil
}

func (svc *Service) ensurePostExists(ctx context.Context, postID int64) error {
	exists, err := svc.posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to check post: %w", err)
	}

	if !exists {
		return PostNotFoundError{ID: postID}
	}

	return nil
}

func (svc *Service) ownedComment(ctx context.Context, commentID, actorID int64) (*Comment, error) {
	comment, err := svc.commentRepo.Find(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	if comment.AuthorID != actorID {
		return nil, ErrForbidden
	}

	return comment, nil
}
