package contents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nasermirzaei89/inkwell/pagination"
)

type Service struct {
	postRepo PostRepository
}

func NewService(postRepo PostRepository) *Service {
	return &Service{
		postRepo: postRepo,
	}
}

type CreatePostRequest struct {
	AuthorID int64
	Title    string
	Content  string
}

func (svc *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, MissingFieldError{Field: "title"}
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, MissingFieldError{Field: "content"}
	}

	timeNow := time.Now()

	post := &Post{
		Title:     title,
		Content:   content,
		AuthorID:  req.AuthorID,
		CreatedAt: timeNow,
		UpdatedAt: timeNow,
	}

	err := svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (svc *Service) GetPost(ctx context.Context, postID int64) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

// Exists lets other services check a post without loading it.
func (svc *Service) Exists(ctx context.Context, postID int64) (bool, error) {
	exists, err := svc.postRepo.Exists(ctx, postID)
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}

	return exists, nil
}

// UpdatePostRequest changes the non-empty fields only.
type UpdatePostRequest struct {
	ID      int64
	ActorID int64
	Title   string
	Content string
}

func (svc *Service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	post, err := svc.ownedPost(ctx, req.ID, req.ActorID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		post.Title = title
	}

	if content := strings.TrimSpace(req.Content); content != "" {
		post.Content = content
	}

	post.UpdatedAt = time.Now()

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// DeletePost removes the post. Its comments go with it through the storage
// cascade.
func (svc *Service) DeletePost(ctx context.Context, postID, actorID int64) error {
	_, err := svc.ownedPost(ctx, postID, actorID)
	if err != nil {
		return err
	}

	err = svc.postRepo.Delete(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

type PostPage struct {
	pagination.Result

	Posts []*Post
}

func (svc *Service) ListPosts(ctx context.Context, window pagination.Window) (*PostPage, error) {
	return svc.listPage(ctx, &ListPostsParams{}, window)
}

func (svc *Service) ListPostsByAuthor(ctx context.Context, authorID int64, window pagination.Window) (*PostPage, error) {
	return svc.listPage(ctx, &ListPostsParams{AuthorID: authorID}, window)
}

type SearchPostsRequest struct {
	Title   string
	Content string
	Window  pagination.Window
}

func (svc *Service) SearchPosts(ctx context.Context, req SearchPostsRequest) (*PostPage, error) {
	if req.Title == "" && req.Content == "" {
		return nil, ErrSearchTermsRequired
	}

	return svc.listPage(ctx, &ListPostsParams{Title: req.Title, Content: req.Content}, req.Window)
}

func (svc *Service) listPage(ctx context.Context, params *ListPostsParams, window pagination.Window) (*PostPage, error) {
	params.Offset = window.Offset()
	params.Limit = window.Limit()

	posts, err := svc.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	total, err := svc.postRepo.Count(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	return &PostPage{
		Result: pagination.NewResult(window, total),
		Posts:  posts,
	}, nil
}

func (svc *Service) ownedPost(ctx context.Context, postID, actorID int64) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	if post.AuthorID != actorID {
		return nil, ErrForbidden
	}

	return post, nil
}
