package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/inkwell/authentication"
	authcontext "github.com/nasermirzaei89/inkwell/authentication/context"
)

const headerRequestID = "X-Request-Id"

type contextKeyRequestID struct{}

type contextKeyLogger struct{}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID{}).(string)

	return id
}

// loggerFromContext returns the request scoped logger or the default one.
func loggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKeyLogger{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}

// requestIDMiddleware keeps the incoming X-Request-Id or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), contextKeyRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	count  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	count, err := w.ResponseWriter.Write(p)
	w.count += count

	return count, err
}

// loggingMiddleware logs every request and records it in the metrics. The
// mux fills r.Pattern, so the request passed down must be the same one read
// back afterwards.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := h.logger
		if id := requestIDFromContext(r.Context()); id != "" {
			reqLogger = reqLogger.With(slog.String("requestId", id))
		}

		r = r.WithContext(context.WithValue(r.Context(), contextKeyLogger{}, reqLogger))

		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(sw, r)

		dur := time.Since(start)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		h.metrics.observe(r.Method, r.Pattern, sw.status, dur)

		reqLogger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Duration("duration", dur),
			slog.Int("bytes", sw.count),
		)
	})
}

const bearerPrefix = "Bearer "

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

// Authenticated rejects requests without a valid bearer token and puts the
// user id of the token into the request context.
func (h *Handler) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, r, errUnauthenticated)

			return
		}

		userID, err := h.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)

			return
		}

		ctx := authcontext.WithSubject(r.Context(), userID)
		if !authcontext.IsAuthenticated(ctx) {
			writeError(w, r, authentication.ErrInvalidToken)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
