// Package feed lists posts with the full comment forest of every post
// attached.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/pagination"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of comment trees fetched at once.
const DefaultConcurrency = 8

var ErrForbidden = errors.New("posts of other users can not be listed")

type PostLister interface {
	ListPosts(ctx context.Context, window pagination.Window) (page *contents.PostPage, err error)
	ListPostsByAuthor(ctx context.Context, authorID int64, window pagination.Window) (page *contents.PostPage, err error)
	SearchPosts(ctx context.Context, req contents.SearchPostsRequest) (page *contents.PostPage, err error)
}

type CommentTreeSource interface {
	CommentTree(ctx context.Context, postID int64) (forest []*discuss.CommentNode, err error)
}

type PostWithComments struct {
	contents.Post

	Comments []*discuss.CommentNode
}

type Page struct {
	pagination.Result

	Posts []*PostWithComments
}

type Service struct {
	posts       PostLister
	comments    CommentTreeSource
	concurrency int
}

func NewService(posts PostLister, comments CommentTreeSource) *Service {
	return &Service{
		posts:       posts,
		comments:    comments,
		concurrency: DefaultConcurrency,
	}
}

// SetConcurrency changes the fan-out limit. Values below one mean one.
func (svc *Service) SetConcurrency(n int) {
	svc.concurrency = max(n, 1)
}

func (svc *Service) ListAll(ctx context.Context, window pagination.Window) (*Page, error) {
	page, err := svc.posts.ListPosts(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return svc.attachComments(ctx, page)
}

// ListByAuthor lists the posts of authorID. Only the author may list them.
func (svc *Service) ListByAuthor(ctx context.Context, actorID, authorID int64, window pagination.Window) (*Page, error) {
	if actorID != authorID {
		return nil, ErrForbidden
	}

	page, err := svc.posts.ListPostsByAuthor(ctx, authorID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts of user %d: %w", authorID, err)
	}

	return svc.attachComments(ctx, page)
}

func (svc *Service) Search(ctx context.Context, req contents.SearchPostsRequest) (*Page, error) {
	page, err := svc.posts.SearchPosts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	return svc.attachComments(ctx, page)
}

// attachComments fetches one comment forest per post concurrently. The
// result keeps the order of the page.
func (svc *Service) attachComments(ctx context.Context, page *contents.PostPage) (*Page, error) {
	results := make([]*PostWithComments, len(page.Posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(svc.concurrency)

	for i, post := range page.Posts {
		g.Go(func() error {
			forest, err := svc.comments.CommentTree(gctx, post.ID)
			if err != nil {
				return fmt.Errorf("failed to get comments of post %d: %w", post.ID, err)
			}

			results[i] = &PostWithComments{
				Post:     *post,
				Comments: forest,
			}

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return &Page{
		Result: page.Result,
		Posts:  results,
	}, nil
}
