package web

import (
	"net/http"

	authcontext "github.com/nasermirzaei89/inkwell/authentication/context"
	"github.com/nasermirzaei89/inkwell/contents"
)

func (h *Handler) HandleFeed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, err := h.feedSvc.ListAll(r.Context(), window)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newFeedPageResponse(page, r))
	})
}

func (h *Handler) HandleUserFeed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, err := h.feedSvc.ListByAuthor(r.Context(), authcontext.GetSubject(r.Context()), userID, window)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newFeedPageResponse(page, r))
	})
}

func (h *Handler) HandleSearchFeed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		req := contents.SearchPostsRequest{
			Title:   q.Get("title"),
			Content: q.Get("content"),
		}

		if req.Title == "" && req.Content == "" {
			writeError(w, r, contents.ErrSearchTermsRequired)

			return
		}

		window, err := h.window(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		req.Window = window

		page, err := h.feedSvc.Search(r.Context(), req)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newFeedPageResponse(page, r))
	})
}
