package web

import (
	"net/http"

	authcontext "github.com/nasermirzaei89/inkwell/authentication/context"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/pagination"
)

// window resolves the page and limit query parameters, falling back to the
// configured defaults when they are omitted.
func (h *Handler) window(r *http.Request) (pagination.Window, error) {
	q := r.URL.Query()

	page := q.Get(pagination.QueryParamPage)
	if page == "" {
		page = h.defaultPage
	}

	limit := q.Get(pagination.QueryParamLimit)
	if limit == "" {
		limit = h.defaultLimit
	}

	return pagination.Resolve(page, limit)
}

func (h *Handler) HandleCreatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req postRequest

		err := decodeJSON(r, &req)
		if err == nil {
			err = req.validateCreate()
		}

		if err != nil {
			writeError(w, r, err)

			return
		}

		post, err := h.contentsSvc.CreatePost(r.Context(), contents.CreatePostRequest{
			AuthorID: authcontext.GetSubject(r.Context()),
			Title:    deref(req.Title),
			Content:  deref(req.Content),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusCreated, singlePostResponse{Success: true, Post: newPostResponse(post)})
	})
}

func (h *Handler) HandleListPosts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, err := h.contentsSvc.ListPosts(r.Context(), window)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, postsPageResponse{
			Success:      true,
			pageResponse: newPageResponse(page.Result, r),
			Posts:        newPostResponses(page.Posts),
		})
	})
}

func (h *Handler) HandleGetPost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		post, err := h.contentsSvc.GetPost(r.Context(), postID)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, singlePostResponse{Success: true, Post: newPostResponse(post)})
	})
}

func (h *Handler) HandleUpdatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postId")
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

		post, err := h.contentsSvc.UpdatePost(r.Context(), contents.UpdatePostRequest{
			ID:      postID,
			ActorID: authcontext.GetSubject(r.Context()),
			Title:   deref(req.Title),
			Content: deref(req.Content),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, singlePostResponse{Success: true, Post: newPostResponse(post)})
	})
}

func (h *Handler) HandleDeletePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "postId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.contentsSvc.DeletePost(r.Context(), postID, authcontext.GetSubject(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Post deleted successfully"})
	})
}
