package inkwell

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nasermirzaei89/env"
	"github.com/nasermirzaei89/inkwell/authentication"
	"github.com/nasermirzaei89/inkwell/contents"
	"github.com/nasermirzaei89/inkwell/db/sqlite3"
	"github.com/nasermirzaei89/inkwell/discuss"
	"github.com/nasermirzaei89/inkwell/feed"
	"github.com/nasermirzaei89/inkwell/random"
	"github.com/nasermirzaei89/inkwell/server"
	"github.com/nasermirzaei89/inkwell/web"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultJWTIssuer         = "inkwell"
	defaultEmailFilterSize   = 10_000
	defaultEmailFilterFPRate = 0.01
)

type App struct {
	server  *server.Server
	handler *web.Handler
	db      *sql.DB
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", "file::memory:?cache=shared"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	userRepo := sqlite3.NewUserRepository(db)
	postRepo := sqlite3.NewPostRepository(db)
	commentRepo := sqlite3.NewCommentRepository(db)

	tokenTTL, err := getDurationFromEnv("TOKEN_TTL", authentication.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}

	secret := env.GetString("JWT_SECRET", "")
	if secret == "" {
		slog.WarnContext(ctx, "JWT_SECRET is not set, tokens will not survive a restart")

		secret = random.String(32)
	}

	tokenIssuer := authentication.NewTokenIssuer(secret, env.GetString("JWT_ISSUER", defaultJWTIssuer), tokenTTL)
	authSvc := authentication.NewService(userRepo, tokenIssuer)

	if err := authSvc.LoadEmailFilter(ctx, defaultEmailFilterSize, defaultEmailFilterFPRate); err != nil {
		return nil, fmt.Errorf("failed to load email filter: %w", err)
	}

	contentsSvc := contents.NewService(postRepo)
	discussSvc := discuss.NewService(commentRepo, contentsSvc)
	feedSvc := feed.NewService(contentsSvc, discussSvc)

	concurrency, err := getIntFromEnv("FEED_CONCURRENCY", feed.DefaultConcurrency)
	if err != nil {
		return nil, err
	}

	feedSvc.SetConcurrency(concurrency)

	defaultPage, err := getIntFromEnv("PAGINATION_DEFAULT_PAGE", web.DefaultPage)
	if err != nil {
		return nil, err
	}

	defaultLimit, err := getIntFromEnv("PAGINATION_DEFAULT_LIMIT", web.DefaultLimit)
	if err != nil {
		return nil, err
	}

	httpHandler, err := web.NewHandler(authSvc, contentsSvc, discussSvc, feedSvc, web.Config{
		DefaultPage:  defaultPage,
		DefaultLimit: defaultLimit,
		Logger:       slog.Default(),
		Registry:     prometheus.NewRegistry(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP handler: %w", err)
	}

	app := &App{
		server:  newServer(),
		handler: httpHandler,
		db:      db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func getIntFromEnv(key string, def int) (int, error) {
	raw := env.GetString(key, "")
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}

	return v, nil
}

func getDurationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := env.GetString(key, "")
	if raw == "" {
		return def, nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}

	return v, nil
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

// NewLoggerFromEnv builds the process logger. LOG_FORMAT is text or json.
func NewLoggerFromEnv(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: GetLogLevelFromEnv()}

	formatStr := env.GetString("LOG_FORMAT", "text")
	switch formatStr {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	case "text":
		return slog.New(slog.NewTextHandler(w, opts))
	default:
		slog.Warn("unknown log format, defaulting to text", "format", formatStr)

		return slog.New(slog.NewTextHandler(w, opts))
	}
}
