package web

import (
	"net/http"

	authcontext "github.com/nasermirzaei89/inkwell/authentication/context"
	"github.com/nasermirzaei89/inkwell/discuss"
)

func (h *Handler) HandleCreateComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createCommentRequest

		err := decodeJSON(r, &req)
		if err == nil {
			err = req.validate()
		}

		if err != nil {
			writeError(w, r, err)

			return
		}

		comment, err := h.discussSvc.CreateComment(r.Context(), discuss.CreateCommentRequest{
			PostID:   *req.PostID,
			AuthorID: authcontext.GetSubject(r.Context()),
			ParentID: req.ParentID,
			Title:    req.Title,
			Content:  req.Content,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusCreated, newCommentResponse(comment))
	})
}

func (h *Handler) HandleGetComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		comment, err := h.discussSvc.GetComment(r.Context(), commentID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newCommentResponse(comment))
	})
}

func (h *Handler) HandleUpdateComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		var req postRequest

		err = decodeJSON(r, &req)
		if err == nil {
			err = req.validateUpdate()
		}

		if err != nil {
			writeError(w, r, err)

			return
		}

		comment, err := h.discussSvc.UpdateComment(r.Context(), discuss.UpdateCommentRequest{
			ID:      commentID,
			ActorID: authcontext.GetSubject(r.Context()),
			Title:   deref(req.Title),
			Content: deref(req.Content),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newCommentResponse(comment))
	})
}

func (h *Handler) HandleDeleteComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.discussSvc.DeleteComment(r.Context(), commentID, authcontext.GetSubject(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
	})
}

func (h *Handler) HandleListPostComments() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, err := h.discussSvc.ListPostComments(r.Context(), postID, window)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, commentTreePageResponse{
			pageResponse: newPageResponse(page.Result, r),
			Comments:     newForestResponse(page.Comments),
		})
	})
}

// HandleSearchComments answers a flat page of comments matching the title or
// content query parameters.
func (h *Handler) HandleSearchComments() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		req := discuss.SearchCommentsRequest{
			Title:   q.Get("title"),
			Content: q.Get("content"),
		}

		if req.Title == "" && req.Content == "" {
			writeError(w, r, discuss.ErrSearchTermsRequired)

			return
		}

		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		req.Window = window

		page, err := h.discussSvc.SearchComments(r.Context(), req)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, commentsPageResponse{
			pageResponse: newPageResponse(page.Result, r),
			Comments:     newCommentResponses(page.Comments),
		})
	})
}
