package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/inkwell/discuss"
)

const tableComments = "comments"

type CommentRepository struct {
	db *sql.DB
}

var _ discuss.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const (
	commentFieldID        = "id"
	commentFieldTitle     = "title"
	commentFieldContent   = "content"
	commentFieldAuthorID  = "user_id"
	commentFieldPostID    = "post_id"
	commentFieldParentID  = "parent_id"
	commentFieldCreatedAt = "created_at"
	commentFieldUpdatedAt = "updated_at"
)

func commentColumns() []string {
	return []string{
		commentFieldID,
		commentFieldTitle,
		commentFieldContent,
		commentFieldAuthorID,
		commentFieldPostID,
		commentFieldParentID,
		commentFieldCreatedAt,
		commentFieldUpdatedAt,
	}
}

func scanComment(row sq.RowScanner) (*discuss.Comment, error) {
	var (
		comment  discuss.Comment
		parentID sql.NullInt64
	)

	err := row.Scan(
		&comment.ID,
		&comment.Title,
		&comment.Content,
		&comment.AuthorID,
		&comment.PostID,
		&parentID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	if parentID.Valid {
		comment.ParentID = &parentID.Int64
	}

	return &comment, nil
}

func (repo *CommentRepository) Insert(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Insert(tableComments).
		Columns(
			commentFieldTitle,
			commentFieldContent,
			commentFieldAuthorID,
			commentFieldPostID,
			commentFieldParentID,
			commentFieldCreatedAt,
			commentFieldUpdatedAt,
		).
		Values(
			comment.Title,
			comment.Content,
			comment.AuthorID,
			comment.PostID,
			comment.ParentID,
			comment.CreatedAt,
			comment.UpdatedAt,
		)

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	return nil
}

func (repo *CommentRepository) Find(ctx context.Context, commentID int64) (*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldID: commentID})

	q = q.RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, discuss.CommentNotFoundError{ID: commentID}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

func (repo *CommentRepository) Update(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Update(tableComments).
		Set(commentFieldTitle, comment.Title).
		Set(commentFieldContent, comment.Content).
		Set(commentFieldUpdatedAt, comment.UpdatedAt).
		Where(sq.Eq{commentFieldID: comment.ID})

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	return expectAffected(res, discuss.CommentNotFoundError{ID: comment.ID})
}

func (repo *CommentRepository) Delete(ctx context.Context, commentID int64) error {
	q := sq.Delete(tableComments).Where(sq.Eq{commentFieldID: commentID})

	q = q.RunWith(repo.db)

	res, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	return expectAffected(res, discuss.CommentNotFoundError{ID: commentID})
}

func filterComments(q sq.SelectBuilder, params *discuss.ListCommentsParams) sq.SelectBuilder {
	if params.PostID != 0 {
		q = q.Where(sq.Eq{commentFieldPostID: params.PostID})
	}

	if match := textMatch(commentFieldTitle, params.Title, commentFieldContent, params.Content); match != nil {
		q = q.Where(match)
	}

	return q
}

func (repo *CommentRepository) List(
	ctx context.Context,
	params *discuss.ListCommentsParams,
) ([]*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		OrderBy(commentFieldID + " ASC")

	q = filterComments(q, params)

	if params.Limit > 0 {
		q = q.Limit(params.Limit).Offset(params.Offset)
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	comments := make([]*discuss.Comment, 0)

	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}

		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return comments, nil
}

func (repo *CommentRepository) Count(ctx context.Context, params *discuss.ListCommentsParams) (int, error) {
	q := filterComments(sq.Select("COUNT(*)").From(tableComments), params)

	q = q.RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
