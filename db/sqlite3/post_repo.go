package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/inkwell/contents"
)

const tablePosts = "posts"

type PostRepository struct {
	db *sql.DB
}

var _ contents.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID        = "id"
	postFieldTitle     = "title"
	postFieldContent   = "content"
	postFieldAuthorID  = "user_id"
	postFieldCreatedAt = "created_at"
	postFieldUpdatedAt = "updated_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldContent,
		postFieldAuthorID,
		postFieldCreatedAt,
		postFieldUpdatedAt,
	}
}

func scanPost(row sq.RowScanner) (*contents.Post, error) {
	var post contents.Post

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *contents.Post) error {
	q := sq.Insert(tablePosts).
		Columns(postFieldTitle, postFieldContent, postFieldAuthorID, postFieldCreatedAt, postFieldUpdatedAt).
		Values(post.Title, post.Content, post.AuthorID, post.CreatedAt, post.UpdatedAt)

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID int64) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	post, err := scanPost(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contents.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

func (repo *PostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	q := sq.Select("1").
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		Limit(1)

	q = q.RunWith(repo.db)

	var one int

	err := q.QueryRowContext(ctx).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check post: %w", err)
	}

	return true, nil
}

func (repo *PostRepository) Update(ctx context.Context, post *contents.Post) error {
	q := sq.Update(tablePosts).
		Set(postFieldTitle, post.Title).
		Set(postFieldContent, post.Content).
		Set(postFieldUpdatedAt, post.UpdatedAt).
		Where(sq.Eq{postFieldID: post.ID})

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return expectAffected(res, contents.PostNotFoundError{ID: post.ID})
}

func (repo *PostRepository) Delete(ctx context.Context, postID int64) error {
	q := sq.Delete(tablePosts).Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	return expectAffected(res, contents.PostNotFoundError{ID: postID})
}

func filterPosts(q sq.SelectBuilder, params *contents.ListPostsParams) sq.SelectBuilder {
	if params.AuthorID != 0 {
		q = q.Where(sq.Eq{postFieldAuthorID: params.AuthorID})
	}

	if match := textMatch(postFieldTitle, params.Title, postFieldContent, params.Content); match != nil {
		q = q.Where(match)
	}

	return q
}

func (repo *PostRepository) List(ctx context.Context, params *contents.ListPostsParams) ([]*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		OrderBy(postFieldID + " ASC")

	q = filterPosts(q, params)

	if params.Limit > 0 {
		q = q.Limit(params.Limit).Offset(params.Offset)
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*contents.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}

func (repo *PostRepository) Count(ctx context.Context, params *contents.ListPostsParams) (int, error) {
	q := filterPosts(sq.Select("COUNT(*)").From(tablePosts), params)

	q = q.RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}
