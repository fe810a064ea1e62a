package web

import (
	"net/http"
	"time"

	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/nasermirzaei89/inkwell/pagination"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(user *authentication.User) *userResponse {
	return &userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"UserId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPostResponse(post *contents.Post) *postResponse {
	return &postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		UserID:    post.AuthorID,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func newPostResponses(posts []*contents.Post) []*postResponse {
	res := make([]*postResponse, 0, len(posts))
	for _, post := range posts {
		res = append(res, newPostResponse(post))
	}

	return res
}

type singlePostResponse struct {
	Success bool          `json:"success"`
	Post    *postResponse `json:"post"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"UserId"`
	PostID    int64     `json:"PostId"`
	ParentID  *int64    `json:"ParentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(comment *discuss.Comment) *commentResponse {
	return &commentResponse{
		ID:        comment.ID,
		Title:     comment.Title,
		Content:   comment.Content,
		UserID:    comment.AuthorID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func newCommentResponses(comments []*discuss.Comment) []*commentResponse {
	res := make([]*commentResponse, 0, len(comments))
	for _, comment := range comments {
		res = append(res, newCommentResponse(comment))
	}

	return res
}

type commentNodeResponse struct {
	commentResponse

	Replies []*commentNodeResponse `json:"replies"`
}

func newForestResponse(nodes []*discuss.CommentNode) []*commentNodeResponse {
	res := make([]*commentNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		res = append(res, &commentNodeResponse{
			commentResponse: *newCommentResponse(&node.Comment),
			Replies:         newForestResponse(node.Replies),
		})
	}

	return res
}

type pageResponse struct {
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	NextPage *string `json:"nextPage"`
}

func newPageResponse(res pagination.Result, r *http.Request) pageResponse {
	return pageResponse{
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		NextPage: pagination.NextPageURL(res.NextPage, res.PageSize, r),
	}
}

type postsPageResponse struct {
	Success bool `json:"success"`
	pageResponse

	Posts []*postResponse `json:"posts"`
}

type commentTreePageResponse struct {
	pageResponse

	Comments []*commentNodeResponse `json:"comments"`
}

type commentsPageResponse struct {
	pageResponse

	Comments []*commentResponse `json:"comments"`
}

type postWithCommentsResponse struct {
	postResponse

	Comments []*commentNodeResponse `json:"comments"`
}

type feedPageResponse struct {
	pageResponse

	Posts []*postWithCommentsResponse `json:"posts"`
}

func newFeedPageResponse(page *feed.Page, r *http.Request) *feedPageResponse {
	posts := make([]*postWithCommentsResponse, 0, len(page.Posts))
	for _, post := range page.Posts {
		posts = append(posts, &postWithCommentsResponse{
			postResponse: *newPostResponse(&post.Post),
			Comments:     newForestResponse(post.Comments),
		})
	}

	return &feedPageResponse{
		pageResponse: newPageResponse(page.Result, r),
		Posts:        posts,
	}
}
