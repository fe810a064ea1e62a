package web

import (
	"net/http"

	"github.com/nasermirzaei89/inkwell/authentication"
	authcontext "github.com/nasermirzaei89/inkwell/authentication/context"
)

func (h *Handler) HandleSignUp() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest

		err := decodeJSON(r, &req)
		if err == nil {
			err = req.validate()
		}

		if err != nil {
			writeError(w, r, err)

			return
		}

		token, err := h.authSvc.SignUp(r.Context(), authentication.SignUpRequest{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
	})
}

func (h *Handler) HandleSignIn() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest

		err := decodeJSON(r, &req)
		if err == nil {
			err = req.validate()
		}

		if err != nil {
			writeError(w, r, err)

			return
		}

		token, err := h.authSvc.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	})
}

// HandleMe answers the profile of the caller.
func (h *Handler) HandleMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authSvc.GetUser(r.Context(), authcontext.GetSubject(r.Context()))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, http.StatusOK, newUserResponse(user))
	})
}
