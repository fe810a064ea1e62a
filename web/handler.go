package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Config struct {
	DefaultPage  int
	DefaultLimit int
	Logger       *slog.Logger
	Registry     *prometheus.Registry
}

type Handler struct {
	mux          *http.ServeMux
	handler      http.Handler
	authSvc      *authentication.Service
	contentsSvc  *contents.Service
	discussSvc   *discuss.Service
	feedSvc      *feed.Service
	metrics      *metrics
	registry     *prometheus.Registry
	logger       *slog.Logger
	defaultPage  string
	defaultLimit string
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(
	authSvc *authentication.Service,
	contentsSvc *contents.Service,
	discussSvc *discuss.Service,
	feedSvc *feed.Service,
	cfg Config,
) (*Handler, error) {
	if cfg.DefaultPage <= 0 {
		cfg.DefaultPage = DefaultPage
	}

	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	h := &Handler{
		mux:          nil,
		handler:      nil,
		authSvc:      authSvc,
		contentsSvc:  contentsSvc,
		discussSvc:   discussSvc,
		feedSvc:      feedSvc,
		metrics:      nil,
		registry:     cfg.Registry,
		logger:       cfg.Logger,
		defaultPage:  strconv.Itoa(cfg.DefaultPage),
		defaultLimit: strconv.Itoa(cfg.DefaultLimit),
	}

	{
		m, err := newMetrics(cfg.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}

		h.metrics = m
	}

	{
		h.mux = &http.ServeMux{}
		h.handler = h.mux

		h.registerRoutes()
	}

	{
		h.handler = h.loggingMiddleware(h.handler)
		h.handler = requestIDMiddleware(h.handler)
		h.handler = recoverMiddleware(h.handler)
	}

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.HandleHealth)
	h.mux.Handle("GET /metrics", h.HandleMetrics())

	h.mux.Handle("POST /auth/signup", h.HandleSignUp())
	h.mux.Handle("POST /auth/signin", h.HandleSignIn())
	h.mux.Handle("GET /auth/me", h.Authenticated(h.HandleMe()))

	h.mux.Handle("POST /posts", h.Authenticated(h.HandleCreatePost()))
	h.mux.Handle("GET /posts", h.Authenticated(h.HandleListPosts()))
	h.mux.Handle("GET /posts/{postId}", h.Authenticated(h.HandleGetPost()))
	h.mux.Handle("PUT /posts/{postId}", h.Authenticated(h.HandleUpdatePost()))
	h.mux.Handle("DELETE /posts/{postId}", h.Authenticated(h.HandleDeletePost()))

	h.mux.Handle("POST /comments", h.Authenticated(h.HandleCreateComment()))
	h.mux.Handle("GET /comments", h.Authenticated(h.HandleSearchComments()))
	h.mux.Handle("GET /comments/post/{postId}", h.Authenticated(h.HandleListPostComments()))
	h.mux.Handle("GET /comments/{commentId}", h.Authenticated(h.HandleGetComment()))
	h.mux.Handle("PUT /comments/{commentId}", h.Authenticated(h.HandleUpdateComment()))
	h.mux.Handle("DELETE /comments/{commentId}", h.Authenticated(h.HandleDeleteComment()))

	h.mux.Handle("GET /posts-comments", h.Authenticated(h.HandleFeed()))
	h.mux.Handle("GET /posts-comments/{$}", h.Authenticated(h.HandleFeed()))
	h.mux.Handle("GET /posts-comments/user/{userId}", h.Authenticated(h.HandleUserFeed()))
	h.mux.Handle("GET /posts-comments/search", h.Authenticated(h.HandleSearchFeed()))

	h.mux.HandleFunc("/", h.HandleNotFound)
}

// recoverMiddleware answers 500 to a panicking handler unless the response
// has already started.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}

		defer func(ctx context.Context) {
			if err := recover(); err != nil {
				slog.ErrorContext(
					ctx,
					"recovered from panic",
					"error",
					err,
					"stack",
					string(debug.Stack()),
				)

				if sw.status != 0 {
					return
				}

				writeJSON(sw, http.StatusInternalServerError, messageResponse{Message: internalErrorMessage})
			}
		}(r.Context())

		next.ServeHTTP(sw, r)
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, messageResponse{
		Message:   "Route not found",
		RequestID: requestIDFromContext(r.Context()),
	})
}
